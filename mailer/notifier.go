package mailer

import (
	"context"
	"time"

	"cafeteria-api/events"
	"cafeteria-api/logger"
)

const sendTimeout = 30 * time.Second

// Notifier emails customers when their order changes status.
type Notifier struct {
	mail Mailer
	log  logger.Logger
}

func NewNotifier(mail Mailer, log logger.Logger) *Notifier {
	return &Notifier{mail: mail, log: log}
}

// Run consumes events until ctx is done or the channel is closed.
func (n *Notifier) Run(ctx context.Context, in <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			n.handle(ctx, ev)
		}
	}
}

func (n *Notifier) handle(ctx context.Context, ev events.Event) {
	if ev.Type != events.TypeOrderStatusUpdated || ev.Order == nil || ev.Order.UserEmail == "" {
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	o := ev.Order
	if err := n.mail.SendOrderStatus(sendCtx, o.UserEmail, o.UserName, o.ID, ev.Status); err != nil {
		n.log.Warnf("order #%d: status email to %s failed: %v", o.ID, o.UserEmail, err)
	}
}
