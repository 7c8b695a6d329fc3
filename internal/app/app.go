package app

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"tedep/internal/reconciler"
	"tedep/pkg/logging"
)

// Controller is a reconciler that can be started in a namespace.
// *reconciler.Controller[T] implements it for every resource type.
type Controller interface {
	Name() string
	Start(ctx context.Context, cluster reconciler.Cluster, namespace string) (reconciler.Task, error)
}

// service is a node of the composition tree.
type service interface {
	start(ctx context.Context, cluster reconciler.Cluster) (reconciler.Task, error)
}

// App composes controllers. Every Register returns a new App whose root is
// the pair of the new registration (left) and everything registered before
// it (right). Apps are immutable and safe to share.
type App struct {
	root  service
	count int
}

// New returns an App without controllers. Running it succeeds with a task
// that completes immediately.
func New() *App {
	return &App{root: empty{}}
}

// Register returns a new App that additionally runs controller in namespace.
func (a *App) Register(namespace string, controller Controller) *App {
	return &App{
		root: pair{
			left: registration{
				index:      a.count,
				namespace:  namespace,
				controller: controller,
			},
			right: a.root,
		},
		count: a.count + 1,
	}
}

// Len returns the number of registered controllers.
func (a *App) Len() int {
	return a.count
}

// Run starts every registered controller against cluster. Preflight runs
// for all controllers concurrently; if any of them fails, no controller is
// started and the error is a *StartupError describing every failure.
//
// The returned task runs all controllers concurrently and returns once all
// of them have stopped.
func (a *App) Run(ctx context.Context, cluster reconciler.Cluster) (reconciler.Task, error) {
	logging.Info("App", "Starting %d controller(s)", a.count)

	task, err := a.root.start(ctx, cluster)
	if err != nil {
		logging.Error("App", err, "Startup failed")
		return nil, err
	}
	return task, nil
}

type empty struct{}

func (empty) start(context.Context, reconciler.Cluster) (reconciler.Task, error) {
	return reconciler.EmptyTask, nil
}

type registration struct {
	index      int
	namespace  string
	controller Controller
}

func (r registration) start(ctx context.Context, cluster reconciler.Cluster) (reconciler.Task, error) {
	task, err := r.controller.Start(ctx, cluster, r.namespace)
	if err != nil {
		var ce *reconciler.ControllerError
		if !errors.As(err, &ce) {
			ce = &reconciler.ControllerError{Controller: r.controller.Name(), Namespace: r.namespace, Err: err}
		}
		return nil, &RegistrationError{Index: r.index, Err: ce}
	}
	return task, nil
}

type pair struct {
	left, right service
}

func (p pair) start(ctx context.Context, cluster reconciler.Cluster) (reconciler.Task, error) {
	var (
		wg                  sync.WaitGroup
		leftTask, rightTask reconciler.Task
		leftErr, rightErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		leftTask, leftErr = p.left.start(ctx, cluster)
	}()
	go func() {
		defer wg.Done()
		rightTask, rightErr = p.right.start(ctx, cluster)
	}()
	wg.Wait()

	if leftErr != nil || rightErr != nil {
		return nil, &StartupError{Left: leftErr, Right: rightErr}
	}

	return func(ctx context.Context) error {
		// Without a derived context neither side is cancelled when the
		// other one fails.
		var g errgroup.Group
		g.Go(func() error { return leftTask(ctx) })
		g.Go(func() error { return rightTask(ctx) })
		return g.Wait()
	}, nil
}
