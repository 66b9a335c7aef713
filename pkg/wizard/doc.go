// Package wizard drives multi-step forms whose fields are rendered by the
// server one step at a time.
//
// A Controller owns one form. Forward validates the current step against the
// server and loads the next step's widgets; at the last step it submits the
// form instead. Backward drops the current step and shows the previous one.
// Observers registered with On receive forward, backward, preSubmit, submit,
// submitError and validationError events.
//
//	client, _ := httpapi.New("https://example.com/")
//	forms, _ := wizard.Discover(page, client, wizard.WithLocation(loc))
//	for forms[0].Submit(ctx) == nil && !forms[0].ReadyToSubmit() {
//		// fill the step's fields, then move on
//	}
//
// Presentation concerns (enabling the submit control, scrolling, alerts and
// navigation) go through a Surface; the location hash mirror and the query
// merged into every payload go through a Location.
package wizard
