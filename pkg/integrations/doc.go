// Package integrations provides repository access shared by the descriptor
// fetchers.
//
// # Overview
//
// A repository base location is either an HTTP(S) URL such as
// https://repo1.maven.org/maven2 or a local directory (a plain path or a
// file:// URL) laid out the same way. [Client] hides the difference:
//
//	client := integrations.NewClient(c, "maven", 24*time.Hour, nil,
//	    integrations.WithTimeout(10*time.Second))
//	data, err := client.Cached(ctx, url, false, true)
//
// # Errors
//
// Failures are reported with two sentinels that callers match with
// errors.Is:
//   - [ErrNotFound]: HTTP 404/410, or a missing local file
//   - [ErrNetwork]: transport failures, timeouts and any other status
//
// Transient failures (transport errors, 429 and 5xx responses) are wrapped
// with [cache.Retryable]. The client only retries them when configured with
// [WithRetries]; by default every request is attempted once.
//
// # Caching
//
// Responses are cached through a [cache.Cache] under keys built by a
// [cache.Keyer]. Callers decide per request whether a document may be
// stored, so that mutable documents are always fetched fresh.
//
// [cache.Cache]: github.com/matzehuels/mavenclosure/pkg/cache.Cache
// [cache.Keyer]: github.com/matzehuels/mavenclosure/pkg/cache.Keyer
// [cache.Retryable]: github.com/matzehuels/mavenclosure/pkg/cache.Retryable
package integrations
