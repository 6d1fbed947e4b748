// Package notification turns order status changes into stored, per-recipient
// notifications and serves each recipient's inbox.
package notification

import (
	"strconv"
	"strings"

	"gorm.io/datatypes"

	"food-delivery-tracking/models"
	"food-delivery-tracking/statemachine"
)

// Template is one message shape. Body placeholders are {order_number} and
// {total_amount}.
type Template struct {
	Title    string
	Body     string
	Category models.NotificationCategory
}

type templateKey struct {
	status models.OrderStatus
	role   models.Role
}

var templates = map[statemachine.Locale]map[templateKey]Template{
	statemachine.LocaleEnglish: {
		{models.StatusConfirmed, models.RoleCustomer}: {
			Title: "Your order is confirmed",
			Body:  "Your order {order_number} has been confirmed and will be prepared shortly",
		},
		{models.StatusPreparing, models.RoleCustomer}: {
			Title: "Your order is being prepared",
			Body:  "The restaurant is preparing your order {order_number} now",
		},
		{models.StatusReady, models.RoleCustomer}: {
			Title: "Your order is ready",
			Body:  "Your order {order_number} is ready and will be delivered shortly",
		},
		{models.StatusPickedUp, models.RoleCustomer}: {
			Title: "Your order is on the way",
			Body:  "The delivery agent picked up your order {order_number} and is heading to you",
		},
		{models.StatusDelivered, models.RoleCustomer}: {
			Title: "Your order has been delivered",
			Body:  "Your order {order_number} was delivered. We hope you enjoyed your meal!",
		},
		{models.StatusCancelled, models.RoleCustomer}: {
			Title: "Your order has been cancelled",
			Body:  "Your order {order_number} was cancelled. The amount will be refunded within 3-5 business days",
		},
		{models.StatusConfirmed, models.RoleRestaurant}: {
			Title: "New order",
			Body:  "You have a new order {order_number} worth {total_amount} MRU",
		},
		{models.StatusReady, models.RoleDeliveryAgent}: {
			Title: "New delivery task",
			Body:  "Order {order_number} has been assigned to you for delivery",
		},
	},
	statemachine.LocaleArabic: {
		{models.StatusConfirmed, models.RoleCustomer}: {
			Title: "تم تأكيد طلبك",
			Body:  "تم تأكيد طلبك رقم {order_number} وسيتم تحضيره قريباً",
		},
		{models.StatusPreparing, models.RoleCustomer}: {
			Title: "يتم تحضير طلبك",
			Body:  "المطعم يقوم بتحضير طلبك رقم {order_number} الآن",
		},
		{models.StatusReady, models.RoleCustomer}: {
			Title: "طلبك جاهز للاستلام",
			Body:  "طلبك رقم {order_number} جاهز وسيتم توصيله قريباً",
		},
		{models.StatusPickedUp, models.RoleCustomer}: {
			Title: "تم استلام طلبك",
			Body:  "وكيل التوصيل استلم طلبك رقم {order_number} وهو في الطريق إليك",
		},
		{models.StatusDelivered, models.RoleCustomer}: {
			Title: "تم توصيل طلبك",
			Body:  "تم توصيل طلبك رقم {order_number} بنجاح. نتمنى أن تكون قد استمتعت بوجبتك!",
		},
		{models.StatusCancelled, models.RoleCustomer}: {
			Title: "تم إلغاء طلبك",
			Body:  "تم إلغاء طلبك رقم {order_number}. سيتم استرداد المبلغ خلال 3-5 أيام عمل",
		},
		{models.StatusConfirmed, models.RoleRestaurant}: {
			Title: "طلب جديد",
			Body:  "لديك طلب جديد رقم {order_number} بقيمة {total_amount} أوقية",
		},
		{models.StatusReady, models.RoleDeliveryAgent}: {
			Title: "مهمة توصيل جديدة",
			Body:  "تم تعيين طلب رقم {order_number} لك للتوصيل",
		},
	},
}

// Lookup returns the template for a status and recipient role. Unknown
// locales fall back to the default one.
func Lookup(status models.OrderStatus, role models.Role, locale statemachine.Locale) (Template, bool) {
	table, ok := templates[locale]
	if !ok {
		table = templates[statemachine.DefaultLocale]
	}
	tpl, ok := table[templateKey{status, role}]
	if !ok {
		return Template{}, false
	}
	if tpl.Category == "" {
		tpl.Category = models.CategoryOrder
	}
	return tpl, true
}

// Render interpolates order data into the template body.
func (t Template) Render(order *models.Order) string {
	r := strings.NewReplacer(
		"{order_number}", order.OrderNumber,
		"{total_amount}", strconv.FormatFloat(order.TotalAmount, 'f', 2, 64),
	)
	return r.Replace(t.Body)
}

// Recipients returns who hears about an order entering status: the customer
// always, the restaurant owner on confirmation and the assigned agent once
// the order is ready. order.Restaurant must be loaded to reach the owner.
func Recipients(order *models.Order, status models.OrderStatus) []models.Actor {
	out := []models.Actor{{Role: models.RoleCustomer, ID: order.CustomerID}}
	switch status {
	case models.StatusConfirmed:
		if order.Restaurant != nil {
			out = append(out, models.Actor{Role: models.RoleRestaurant, ID: order.Restaurant.OwnerID})
		}
	case models.StatusReady:
		if order.DeliveryAgentID != nil {
			out = append(out, models.Actor{Role: models.RoleDeliveryAgent, ID: *order.DeliveryAgentID})
		}
	}
	return out
}

// Build renders the notification one recipient gets for order entering
// status. It reports false when no template covers the pair.
func Build(order *models.Order, status models.OrderStatus, recipient models.Actor, locale statemachine.Locale) (*models.Notification, bool) {
	tpl, ok := Lookup(status, recipient.Role, locale)
	if !ok {
		return nil, false
	}
	return &models.Notification{
		RecipientID:   recipient.ID,
		RecipientRole: recipient.Role,
		Title:         tpl.Title,
		Body:          tpl.Render(order),
		Category:      tpl.Category,
		Payload: datatypes.JSONMap{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"status":       string(status),
		},
	}, true
}
