package cluster

import (
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"

	tedepv1 "tedep/pkg/apis/tedep/v1"
)

// NewScheme returns a scheme with the standard Kubernetes types and the
// tedep custom resources registered.
func NewScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(tedepv1.AddToScheme(scheme))
	return scheme
}
