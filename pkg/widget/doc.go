// Package widget defines the contract between the form controller and the
// widget toolkit (Widget, Factory), a Markup implementation that builds
// widgets from server rendered HTML fragments, and the uid keyed Registry the
// controller uses to own them.
//
// Markup fragments describe themselves through data attributes on their root
// element:
//
//	<div data-uid="title" data-form-area="body" data-parent-uid="" data-replaces=""
//	     data-hidden="False">
//	  <input type="text" name="title">
//	</div>
//
// Named input, select, textarea and button descendants become form fields. A
// control marked data-skip-serialization="True" is ignored by the serializer.
package widget
