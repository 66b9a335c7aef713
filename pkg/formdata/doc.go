// Package formdata turns the named controls of a form into the value map the
// server framework expects, folding bracket-suffixed names ("tags[]",
// "attrs[color][]") into lists and maps, and encodes such maps back into
// bracket-style url.Values for transport.
//
// A "name[]" list stays under its bracketed key. A group with one checked
// value is sent as "name[]=v" and a group with several as "name[]=a&name[]=b",
// so the server always reads the same key.
package formdata
