// Package events provides the change-notification channel for the task
// store.
//
// Every mutation of the store, whatever its origin (reconciliation
// poller, regeneration retry, user action, bulk clear), is published as
// a TaskChangeEvent to all registered handlers. Delivery is at-least-once
// and carries the latest full record, so a consumer such as a
// presentation layer can simply re-read or replace its view of the task.
//
// The primary components are:
// - TaskChangeEvent: one store mutation, with the task's latest state
// - ChangeHandler: interface for components that consume change events
// - ChangeNotifier: interface for components that publish them
package events
