// Package async runs independent operations concurrently.
//
// [RunParallel] starts every task, waits for all of them and reports the
// first failure. Provider backends use it to resolve the references of a
// create request at once.
package async
