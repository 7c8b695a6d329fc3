// Package v1 contains API Schema definitions for the tedep v1 API group.
//
// # API Group: tedep.quantum-box.com/v1
//
// ## TerraformWorkspace
//
// TerraformWorkspace declares a workspace managed by an infrastructure
// provider. The controller in internal/tfws guards every workspace with the
// finalizer.tedep.quantum-box.com finalizer so that provider-side cleanup runs
// before the object disappears from the cluster.
//
// Example:
//
//	apiVersion: tedep.quantum-box.com/v1
//	kind: TerraformWorkspace
//	metadata:
//	  name: networking
//	  namespace: infra
//	spec:
//	  provider:
//	    name: terraform-cloud
//
// +kubebuilder:object:generate=true
// +groupName=tedep.quantum-box.com
package v1
