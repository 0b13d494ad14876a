package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/domain/contact"
)

// Outcome is reported once per attempted email.
type Outcome func(kind string, err error)

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	AdminEmail  string
	Signature   string
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
	OnOutcome   Outcome
}

// Dispatcher sends contact notifications from a bounded queue on a fixed
// set of workers. It implements contact.Notifier.
type Dispatcher struct {
	sender Sender
	cfg    DispatcherConfig
	logger *zap.Logger
	queue  chan contact.Message
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

var _ contact.Notifier = (*Dispatcher)(nil)

// NewDispatcher starts the workers.
func NewDispatcher(sender Sender, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.Signature == "" {
		cfg.Signature = "Portfolio Team"
	}

	d := &Dispatcher{
		sender: sender,
		cfg:    cfg,
		logger: logger,
		queue:  make(chan contact.Message, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Enqueue queues notifications for m. A full queue drops the message and
// logs it; the submission itself has already been stored.
func (d *Dispatcher) Enqueue(m contact.Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notification dropped, dispatcher closed", zap.String("message_id", m.ID))
		return
	}
	select {
	case d.queue <- m:
	default:
		d.logger.Warn("notification dropped, queue full", zap.String("message_id", m.ID))
		d.report("dropped", nil)
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for m := range d.queue {
		d.deliver(m)
	}
}

func (d *Dispatcher) deliver(m contact.Message) {
	if d.cfg.AdminEmail != "" {
		if e, err := ContactNotification(m, d.cfg.AdminEmail); err != nil {
			d.logger.Error("failed to build notification", zap.String("message_id", m.ID), zap.Error(err))
		} else {
			d.send("notification", m.ID, e)
		}
	}
	if e, err := AutoReply(m, d.cfg.Signature); err != nil {
		d.logger.Error("failed to build auto-reply", zap.String("message_id", m.ID), zap.Error(err))
	} else {
		d.send("auto_reply", m.ID, e)
	}
}

func (d *Dispatcher) send(kind, messageID string, e Email) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	err := d.sender.Send(ctx, e)
	if err != nil {
		d.logger.Error("failed to send email",
			zap.String("kind", kind),
			zap.String("message_id", messageID),
			zap.Error(err))
	} else {
		d.logger.Debug("email sent", zap.String("kind", kind), zap.String("message_id", messageID))
	}
	d.report(kind, err)
}

func (d *Dispatcher) report(kind string, err error) {
	if d.cfg.OnOutcome != nil {
		d.cfg.OnOutcome(kind, err)
	}
}

// Close stops accepting messages and waits for queued ones to be sent or
// for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
