// Package content prepares retained message bodies for summarization.
//
// Newsletter bodies arrive as HTML or plain text full of markup, leaked
// transport headers, signature boilerplate, and tracking URLs. The cleaner
// reduces each body to plain prose with URLs replaced by a placeholder
// token, minimizing what gets sent to the summarizer. The corpus builder
// joins the cleaned bodies with an explicit separator and truncates to the
// character limit the summarizer accepts.
package content
