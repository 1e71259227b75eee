// Package pipeline runs a batch of Akeyless operations, one record at a time.
//
// Each record is authenticated and dispatched independently. With
// ContinueOnFail a failing record becomes an error result and the batch goes
// on; otherwise the first failure stops the run.
package pipeline
