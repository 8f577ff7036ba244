// Package compose provides the composition hook: a component calls Use with
// a setup function, and gets back the values that setup returned, with refs
// unwrapped.
//
//	func setup(c *compose.Capabilities) compose.Values {
//	    state := c.Reactive(map[string]any{"count": 0})
//	    return compose.Values{
//	        "state":     state,
//	        "increment": func() { state.Set("count", state.Get("count").(int)+1) },
//	    }
//	}
//
//	func Counter(o *host.Owner) string {
//	    v := compose.Use(o, setup)
//	    state := v["state"].(*reactive.Object)
//	    return fmt.Sprintf("Count is: %v", state.Get("count"))
//	}
//
// Setup runs once per component instance; it runs again only if a different
// setup function is passed. Writes into state made by Reactive or Ref request
// a re-render of the component through the host. Watchers registered during
// setup (or later through the same capabilities) are stopped when the
// component unmounts.
//
// Setup identity is the function's code pointer: two closures created from the
// same function literal count as the same setup.
package compose
