// Package stock exposes the stock service: the validated operations
// layer over the ledger (exists, details, buy, add, modify).
//
// The service itself holds no state and no locks; atomicity of buy and
// modify is the ledger's responsibility. Logical misses (unknown
// product, insufficient stock) surface as false or zero values, never
// as errors; only storage failures return an error, marked with
// storage.ErrStorage. Retrying is a caller concern.
package stock
