// Package tfws contains the TerraformWorkspace controller.
//
// The controller only maintains its finalizer for now: live workspaces are
// re-applied every reconcile interval, deleted workspaces are released
// immediately. Provider-specific behavior plugs into Reconciler.Apply and
// Reconciler.Cleanup.
package tfws
