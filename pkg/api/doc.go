// Package api is the REST client for the notification endpoints: the
// paginated history resource plus the outbound broadcast, targeted send
// and delete actions.
//
// History fetches fail softly by design - callers log and keep whatever
// they already had. Outbound actions return a structured *SendError so
// presentation code can surface the failure; they are never retried
// automatically.
package api
