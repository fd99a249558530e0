/*
Project: Classio - school management (https://classio.app)
Client-side chat core: conversation directory, message threads,
role-gated recipient lists, unread badge.
*/
package classio

/*
TODO: one shared broadcast stream per event category instead of one socket
per subscriber; today every store dials its own push socket and cross-store
consistency relies on explicit refresh calls.

TODO: monotonic sequence guard in the thread store; a page responding out of
order while a push prepend lands could append stale history (see thread.go).
*/
