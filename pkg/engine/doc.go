// Package engine runs confman operations over a loaded configuration.
//
// Every operation works the same way. The selected modules are fetched
// (or located) and resolved concurrently, each independently of the
// others, with a bounded number of workers. Errors local to one module
// are recorded in its report and do not stop its siblings. Before any
// destination is written, the mappings of all modules are checked against
// each other; a collision aborts the whole run with nothing touched.
package engine
