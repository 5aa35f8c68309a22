// Package summarize calls a chat-completion model to condense newsletter
// content into a digest. The model is asked for a JSON object with a single
// "result" key; an empty result means the content held nothing relevant,
// which is a normal outcome and not an error.
package summarize
