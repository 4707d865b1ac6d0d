// Packages lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains shared utilities and background job processing
// (using Redis/Asynq) for queued visitor writes.
package lib
