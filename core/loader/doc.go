// Package loader registers the HTTP features of the service and mounts the
// enabled ones on the fiber router.
//
// A feature is anything that satisfies:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager.Register keeps registration order. Manager.LoadAll skips disabled
// features and returns every load failure joined with multierr, so a broken
// 'integrity' check does not hide a broken 'imports' route group.
package loader
