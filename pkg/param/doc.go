// Package param holds parameter descriptions on both sides of the plugin
// boundary.
//
// On the host side, Descriptor and IndexMap describe what a controller
// reported, and EditSynchronizer tracks the begin/perform/end gestures a
// plugin editor issues from its UI thread. Every gesture and every
// host-issued change is surfaced through one notification contract: a
// ParameterUpdate plugin event.
//
// On the plugin side, Parameter and Registry store normalized values with
// lock-free reads for the audio thread.
package param
