package worker

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/zerr"
)

type handler func(ctx context.Context, ev domain.Event) (domain.Result, error)

// Registration hosts the controller versions of one scope: at most one
// active and one waiting controller at a time.
type Registration struct {
	deps Deps

	// lifecycle serializes install and activation.
	lifecycle sync.Mutex

	mu      sync.RWMutex
	active  *Controller
	waiting *Controller
	retired []*Controller

	handlers map[domain.EventKind]handler
}

// NewRegistration creates an empty registration.
func NewRegistration(deps Deps) *Registration {
	r := &Registration{deps: deps.withDefaults()}
	r.handlers = map[domain.EventKind]handler{
		domain.EventInstall:           r.dispatchInstall,
		domain.EventActivate:          r.dispatchActivate,
		domain.EventFetch:             r.dispatchFetch,
		domain.EventMessage:           r.dispatchMessage,
		domain.EventSync:              r.dispatchSync,
		domain.EventPush:              r.dispatchPush,
		domain.EventNotificationClick: r.dispatchNotificationClick,
	}
	return r
}

// Register installs a controller for the generation. Registering the
// version that is already active or waiting returns that controller.
//
// A controller that installs while another is active waits, unless it
// requested to skip waiting. A failed install leaves the current
// controllers untouched.
func (r *Registration) Register(ctx context.Context, gen domain.Generation) (*Controller, error) {
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if c := r.Active(); c != nil && c.Version() == gen.Version {
		return c, nil
	}
	if c := r.Waiting(); c != nil && c.Version() == gen.Version {
		return c, nil
	}

	c := NewController(gen, r.deps)
	if err := c.Install(ctx); err != nil {
		r.retire(c)
		return nil, err
	}

	r.mu.Lock()
	replaced := r.waiting
	r.waiting = c
	r.mu.Unlock()
	if replaced != nil {
		replaced.MarkRedundant()
		r.retire(replaced)
	}

	if r.Active() == nil || c.SkipWaitingRequested() {
		if err := r.activateWaiting(ctx); err != nil {
			return nil, err
		}
	} else {
		r.deps.Logger.Info("controller " + c.Version() + " is waiting")
	}
	return c, nil
}

// SkipWaiting activates the waiting controller.
func (r *Registration) SkipWaiting(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	return r.activateWaiting(ctx)
}

// activateWaiting promotes the waiting controller. Requests reaching it
// before activation completes wait for it; the previous controller becomes
// redundant only once activation is done. Callers hold r.lifecycle.
func (r *Registration) activateWaiting(ctx context.Context) error {
	r.mu.Lock()
	c := r.waiting
	if c == nil {
		r.mu.Unlock()
		return domain.ErrNoWaitingController
	}
	prev := r.active
	r.active = c
	r.waiting = nil
	r.mu.Unlock()

	if prev != nil {
		prev.FreezeWrites()
	}
	if err := c.Activate(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	if prev != nil {
		prev.MarkRedundant()
		r.retire(prev)
	}
	return nil
}

func (r *Registration) retire(c *Controller) {
	r.mu.Lock()
	r.retired = append(r.retired, c)
	r.mu.Unlock()
}

// Active returns the active controller, or nil.
func (r *Registration) Active() *Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Waiting returns the installed controller waiting to activate, or nil.
func (r *Registration) Waiting() *Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.waiting
}

// Status reports the active and waiting controllers.
func (r *Registration) Status() domain.RegistrationStatus {
	var s domain.RegistrationStatus
	if c := r.Active(); c != nil {
		s.Active = c.Status()
	}
	if c := r.Waiting(); c != nil {
		s.Waiting = c.Status()
	}
	return s
}

// Wait blocks until background work of every controller has finished.
func (r *Registration) Wait() {
	r.mu.RLock()
	controllers := append([]*Controller{}, r.retired...)
	if r.active != nil {
		controllers = append(controllers, r.active)
	}
	r.mu.RUnlock()

	for _, c := range controllers {
		c.Wait()
	}
}

// Dispatch routes an event to its handler.
func (r *Registration) Dispatch(ctx context.Context, ev domain.Event) (domain.Result, error) {
	h, ok := r.handlers[ev.Kind]
	if !ok {
		return domain.Result{}, zerr.With(domain.ErrUnknownEvent, "kind", string(ev.Kind))
	}
	return h(ctx, ev)
}

func (r *Registration) dispatchInstall(ctx context.Context, ev domain.Event) (domain.Result, error) {
	if ev.Generation == nil {
		return domain.Result{}, errors.Join(domain.ErrInstallFailed, domain.ErrInvalidVersion)
	}
	_, err := r.Register(ctx, *ev.Generation)
	return domain.Result{}, err
}

func (r *Registration) dispatchActivate(ctx context.Context, _ domain.Event) (domain.Result, error) {
	return domain.Result{}, r.SkipWaiting(ctx)
}

// dispatchFetch hands the request to the active controller. Without one the
// request falls through to default network handling.
func (r *Registration) dispatchFetch(ctx context.Context, ev domain.Event) (domain.Result, error) {
	for {
		c := r.Active()
		if c == nil {
			return domain.Result{Strategy: domain.StrategyBypass}, nil
		}
		res, err := c.Intercept(ctx, ev.Request)
		// Superseded between lookup and interception; retry on the successor.
		if errors.Is(err, domain.ErrControllerRedundant) && r.Active() != c {
			continue
		}
		return res, err
	}
}

func (r *Registration) dispatchMessage(ctx context.Context, ev domain.Event) (domain.Result, error) {
	switch ev.Message.Type {
	case domain.MessageSkipWaiting:
		err := r.SkipWaiting(ctx)
		if errors.Is(err, domain.ErrNoWaitingController) {
			r.deps.Logger.Debug("skip waiting requested without a waiting controller")
			return domain.Result{Handled: true}, nil
		}
		return domain.Result{Handled: err == nil}, err
	default:
		r.deps.Logger.Warn("ignoring unknown message type " + ev.Message.Type)
		return domain.Result{}, nil
	}
}

func (r *Registration) dispatchSync(ctx context.Context, ev domain.Event) (domain.Result, error) {
	c := r.Active()
	if c == nil {
		return domain.Result{}, domain.ErrNoActiveController
	}
	if err := c.HandleSync(ctx, ev.Tag); err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Handled: true}, nil
}

func (r *Registration) dispatchPush(ctx context.Context, ev domain.Event) (domain.Result, error) {
	c := r.Active()
	if c == nil {
		return domain.Result{}, domain.ErrNoActiveController
	}
	n, err := c.HandlePush(ctx, ev.Payload)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Handled: true, Notification: &n}, nil
}

func (r *Registration) dispatchNotificationClick(ctx context.Context, ev domain.Event) (domain.Result, error) {
	c := r.Active()
	if c == nil {
		return domain.Result{}, domain.ErrNoActiveController
	}
	client, err := c.HandleNotificationClick(ctx, ev.NotificationID)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Handled: true, Client: &client}, nil
}
