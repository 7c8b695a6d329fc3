package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ProviderName identifies the backend that hosts a workspace.
// +kubebuilder:validation:Enum=terraform-cloud
type ProviderName string

const (
	// ProviderTerraformCloud is the hosted Terraform Cloud backend.
	ProviderTerraformCloud ProviderName = "terraform-cloud"
)

// TerraformWorkspaceProvider selects the provider of a workspace.
type TerraformWorkspaceProvider struct {
	// Name of the provider.
	// +kubebuilder:default=terraform-cloud
	Name ProviderName `json:"name" yaml:"name"`
}

// TerraformWorkspaceSpec defines the desired state of TerraformWorkspace
type TerraformWorkspaceSpec struct {
	// Provider configures where the workspace lives.
	// +kubebuilder:validation:Required
	Provider TerraformWorkspaceProvider `json:"provider" yaml:"provider"`
}

// TerraformWorkspaceStatus defines the observed state of TerraformWorkspace
type TerraformWorkspaceStatus struct{}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=tfws
// +kubebuilder:printcolumn:name="Provider",type="string",JSONPath=".spec.provider.name"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// TerraformWorkspace is the Schema for the terraformworkspaces API
type TerraformWorkspace struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   TerraformWorkspaceSpec    `json:"spec,omitempty"`
	Status *TerraformWorkspaceStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// TerraformWorkspaceList contains a list of TerraformWorkspace
type TerraformWorkspaceList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []TerraformWorkspace `json:"items"`
}

func init() {
	SchemeBuilder.Register(&TerraformWorkspace{}, &TerraformWorkspaceList{})
}
