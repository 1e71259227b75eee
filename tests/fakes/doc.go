// Package fakes provides test doubles for the akops Akeyless broker.
//
// Fakes are hand-written (not generated) so tests control every response and
// can inspect every call.
//
// Usage:
//
//	broker := fakes.NewFakeBroker()
//	broker.SetPayload("getStaticSecret", `{"db/password":"s3cr3t"}`)
//	runner := &pipeline.Runner{Broker: broker, ...}
package fakes
