package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	tedepv1 "tedep/pkg/apis/tedep/v1"
)

func newGenerateCRDsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-crds",
		Short: "Print the CustomResourceDefinitions of all tedep resources",
		Long: `Prints the CustomResourceDefinition of every resource type reconciled by
tedep as a multi-document YAML stream, ready for kubectl apply -f -.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCRDs(cmd.OutOrStdout())
		},
	}
}

func writeCRDs(w io.Writer) error {
	for i, crd := range tedepv1.CRDs() {
		data, err := yaml.Marshal(crd)
		if err != nil {
			return fmt.Errorf("failed to marshal CRD %s: %w", crd.Name, err)
		}
		if i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}
