package bot

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"waterme/internal/database"
)

// Subscribe links the user identified by telegramID to the controller with the
// given MAC address, on both sides of the relation. The two writes are not one
// transaction: a failure after the user-side write leaves a one-sided link.
// The user-side write carries the duplicate guard, so of two concurrent calls
// for the same pair exactly one succeeds.
func (b *Bot) Subscribe(ctx context.Context, telegramID int64, mac string) error {
	c, err := b.Store.ControllerFindByMac(ctx, mac)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errors.Wrapf(ErrControllerNotFound, "MAC: %s", mac)
		}
		return errors.Wrapf(err, "Subscribe: error finding Controller with MAC: %s", mac)
	}

	u, err := b.Store.UserFindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errors.Wrapf(ErrUserNotFound, "Telegram ID: %d", telegramID)
		}
		return errors.Wrapf(err, "Subscribe: error finding User with Telegram ID: %d", telegramID)
	}

	// Membership is checked against the resolved subscription set, by MAC
	// equality, not against the raw references.
	subscribed, err := b.Store.ControllersFind(ctx, u.Microcontrollers)
	if err != nil {
		return errors.Wrapf(err, "Subscribe: error resolving Controllers of User with Telegram ID: %d", telegramID)
	}
	for _, sc := range subscribed {
		if sc.MacAddress == c.MacAddress {
			return errors.Wrapf(ErrAlreadySubscribed, "Telegram ID: %d, MAC: %s", telegramID, mac)
		}
	}

	if err := b.Store.UserAddController(ctx, u.ID, c.ID); err != nil {
		if errors.Is(err, database.ErrNoDocumentsModified) {
			return errors.Wrapf(ErrAlreadySubscribed, "Telegram ID: %d, MAC: %s", telegramID, mac)
		}
		return errors.Wrapf(err, "Subscribe: error adding Controller %s to User with Telegram ID: %d", mac, telegramID)
	}

	if err := b.Store.ControllerAddUser(ctx, c.ID, u.ID); err != nil {
		return errors.Wrapf(err,
			"Subscribe: Controller-side link not persisted for MAC: %s, Telegram ID: %d (user-side link already saved)",
			mac, telegramID)
	}
	return nil
}
