// Package testing provides test doubles, builders and helpers shared by the
// seedmaster test suites.
//
//   - ConfigBuilder: fluent builder for test configurations
//   - MockProvider: testify mock of provisioning.Provider
//   - ScriptedChannel: RemoteChannel double that replays a script per call
//   - RecordingObserver: Observer that keeps every line for assertions
//   - CountingSleeper: retry.SleepFunc that counts instead of waiting
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithMasterName("PTMaster").
//	    WithGoogleDrive("client_secret.json").
//	    Build()
package testing
