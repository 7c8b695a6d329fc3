package v1

import (
	"fmt"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
)

const (
	// TerraformWorkspaceKind is the kind of TerraformWorkspace objects.
	TerraformWorkspaceKind = "TerraformWorkspace"
	// TerraformWorkspacePlural is the resource name used in API paths.
	TerraformWorkspacePlural = "terraformworkspaces"
	// TerraformWorkspaceShortName is the kubectl short name.
	TerraformWorkspaceShortName = "tfws"
)

// TerraformWorkspaceCRD returns the CustomResourceDefinition that installs
// TerraformWorkspace into a cluster. It mirrors the kubebuilder markers on
// the Go types.
func TerraformWorkspaceCRD() *apiextensionsv1.CustomResourceDefinition {
	return &apiextensionsv1.CustomResourceDefinition{
		TypeMeta: metav1.TypeMeta{
			APIVersion: apiextensionsv1.SchemeGroupVersion.String(),
			Kind:       "CustomResourceDefinition",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: fmt.Sprintf("%s.%s", TerraformWorkspacePlural, GroupVersion.Group),
		},
		Spec: apiextensionsv1.CustomResourceDefinitionSpec{
			Group: GroupVersion.Group,
			Names: apiextensionsv1.CustomResourceDefinitionNames{
				Kind:       TerraformWorkspaceKind,
				ListKind:   TerraformWorkspaceKind + "List",
				Plural:     TerraformWorkspacePlural,
				Singular:   "terraformworkspace",
				ShortNames: []string{TerraformWorkspaceShortName},
			},
			Scope: apiextensionsv1.NamespaceScoped,
			Versions: []apiextensionsv1.CustomResourceDefinitionVersion{{
				Name:    GroupVersion.Version,
				Served:  true,
				Storage: true,
				Subresources: &apiextensionsv1.CustomResourceSubresources{
					Status: &apiextensionsv1.CustomResourceSubresourceStatus{},
				},
				AdditionalPrinterColumns: []apiextensionsv1.CustomResourceColumnDefinition{
					{Name: "Provider", Type: "string", JSONPath: ".spec.provider.name"},
					{Name: "Age", Type: "date", JSONPath: ".metadata.creationTimestamp"},
				},
				Schema: &apiextensionsv1.CustomResourceValidation{
					OpenAPIV3Schema: terraformWorkspaceSchema(),
				},
			}},
		},
	}
}

// CRDs lists every CustomResourceDefinition of this API group.
func CRDs() []*apiextensionsv1.CustomResourceDefinition {
	return []*apiextensionsv1.CustomResourceDefinition{TerraformWorkspaceCRD()}
}

func terraformWorkspaceSchema() *apiextensionsv1.JSONSchemaProps {
	providerName := apiextensionsv1.JSONSchemaProps{
		Type:        "string",
		Description: "Name of the provider.",
		Enum: []apiextensionsv1.JSON{
			{Raw: []byte(`"` + string(ProviderTerraformCloud) + `"`)},
		},
		Default: &apiextensionsv1.JSON{Raw: []byte(`"` + string(ProviderTerraformCloud) + `"`)},
	}

	return &apiextensionsv1.JSONSchemaProps{
		Type:        "object",
		Description: "TerraformWorkspace is the Schema for the terraformworkspaces API",
		Properties: map[string]apiextensionsv1.JSONSchemaProps{
			"apiVersion": {Type: "string"},
			"kind":       {Type: "string"},
			"metadata":   {Type: "object"},
			"spec": {
				Type:        "object",
				Description: "TerraformWorkspaceSpec defines the desired state of TerraformWorkspace",
				Required:    []string{"provider"},
				Properties: map[string]apiextensionsv1.JSONSchemaProps{
					"provider": {
						Type:        "object",
						Description: "Provider configures where the workspace lives.",
						Required:    []string{"name"},
						Properties: map[string]apiextensionsv1.JSONSchemaProps{
							"name": providerName,
						},
					},
				},
			},
			"status": {
				Type:                   "object",
				Description:            "TerraformWorkspaceStatus defines the observed state of TerraformWorkspace",
				XPreserveUnknownFields: ptr.To(true),
			},
		},
		Required: []string{"spec"},
	}
}
