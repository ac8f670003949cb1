// Package fetch is the HTTP implementation of the remote fetcher used by the
// enrichment engine.
//
// Every request carries a User-Agent and "Accept: */*", runs under a fixed
// per-call timeout (3s by default) and optionally waits on a rate limiter so
// that batch runs stay polite towards public services. Statuses 200 through
// 400 inclusive count as success. Nothing is retried.
//
// JSON bodies are decoded into a record.Record with Decode: objects become
// nested records, arrays become nested records keyed "0", "1", ..., numbers
// become Float64 and nulls are dropped. Turning index-keyed records back into
// repeated values is the job of the collection package.
package fetch
