package assembly

// Module is a component hosted by a part.
type Module interface {
	ModuleName() string
}

// ControllerModuleName is the config name of the Controller module.
const ControllerModuleName = "Controller"

// Controller is the per-part module that carries the part's group tag.
// The tag is kept as text, the way configs store it; it is parsed when a
// grouped action runs.
type Controller struct {
	WheelGroup string
}

// ModuleName implements Module.
func (c *Controller) ModuleName() string { return ControllerModuleName }

// GroupTag returns the raw group tag.
func (c *Controller) GroupTag() string { return c.WheelGroup }

// Generic is a named module with free-form fields, used for components that
// carry no behavior of their own here.
type Generic struct {
	Name   string
	Fields map[string]string
}

// ModuleName implements Module.
func (g *Generic) ModuleName() string { return g.Name }
