// Package openai is a small client for the OpenAI chat completions API.
//
// It covers the two metered actions that call a model: the finance chat
// assistant (Chat) and receipt parsing with a vision model (ParseReceipt).
// Every request runs under the configured timeout so a slow upstream cannot
// hold a gated action open indefinitely.
package openai
