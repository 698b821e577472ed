package loader

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/multierr"
)

// Feature is a module that registers its own routes.
type Feature interface {
	// Name returns the unique name of the feature.
	Name() string
	// IsEnabled reports whether the feature should be loaded.
	IsEnabled() bool
	// Load registers the feature's routes on the router.
	Load(app fiber.Router) error
}

// Manager keeps the registered features in registration order.
type Manager struct {
	features []Feature
}

// NewManager creates an empty feature manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register adds a feature. Features are loaded in the order they were registered.
func (m *Manager) Register(f Feature) {
	m.features = append(m.features, f)
}

// Features returns the registered features.
func (m *Manager) Features() []Feature {
	return m.features
}

// LoadAll loads every enabled feature. A failing feature does not stop the
// others from loading; all failures are returned together.
func (m *Manager) LoadAll(app fiber.Router) error {
	var err error
	for _, f := range m.features {
		if !f.IsEnabled() {
			continue
		}
		if lerr := f.Load(app); lerr != nil {
			err = multierr.Append(err, fmt.Errorf("feature %s: %w", f.Name(), lerr))
		}
	}
	return err
}
