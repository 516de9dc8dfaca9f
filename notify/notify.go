// Package notify pushes delivery status updates to the staff chat. It is the
// outbound half of the messaging surface; nothing here reads inbound updates.
package notify

import (
	"fmt"
	"log"

	"theatre-concessions/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func New(token string, chatID int64) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify bot: %w", err)
	}
	return &Notifier{api: api, chatID: chatID}, nil
}

// DeliveryStatusChanged sends one line per applied transition. Send failures
// are logged, not propagated; the state change already committed.
func (n *Notifier) DeliveryStatusChanged(deliveryID int64, from, to models.DeliveryStatus) {
	var text string
	if from == "" {
		text = fmt.Sprintf("Delivery #%d created (%s)", deliveryID, statusLabel(to))
	} else {
		text = fmt.Sprintf("Delivery #%d: %s -> %s", deliveryID, statusLabel(from), statusLabel(to))
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		log.Printf("notify delivery %d: %v", deliveryID, err)
	}
}

func statusLabel(s models.DeliveryStatus) string {
	switch s {
	case models.DeliveryStatusPending:
		return "pending"
	case models.DeliveryStatusAccepted:
		return "accepted"
	case models.DeliveryStatusInProgress:
		return "being prepared"
	case models.DeliveryStatusReadyForPickup:
		return "ready for pickup"
	case models.DeliveryStatusInTransit:
		return "on the way"
	case models.DeliveryStatusDelivered:
		return "delivered"
	case models.DeliveryStatusFulfilled:
		return "fulfilled"
	case models.DeliveryStatusCancelled:
		return "cancelled"
	default:
		return string(s)
	}
}
