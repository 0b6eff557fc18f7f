// Package providers is the HTTP client for the text-generation backends used
// to merge documents.
//
// The supported backends (OpenAI and DeepSeek) all speak the OpenAI
// chat-completions protocol, so a provider is a catalogue entry (base URL,
// default model, credential variable) rather than a separate implementation.
// Use [Lookup] to find a [Spec] and [New] to build a [Client] from resolved
// [Settings].
//
// Requests are retried with exponential back-off on rate limits and server
// errors. Authentication failures are never retried; see [IsAuthError].
package providers
