package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/yourorg/listing-api/listing"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "listingctl",
		Short:         "Inspect real-estate listing documents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	var maxBytes int64
	root.PersistentFlags().Int64Var(&maxBytes, "max-bytes", 4<<20, "largest input accepted, in bytes")
	reader := func() listing.Reader { return listing.Converter{MaxBytes: maxBytes} }
	root.SetIn(in)
	root.SetOut(out)
	root.AddCommand(newResolveCmd(reader), newDecodeCmd(reader))
	return root
}

func newResolveCmd(reader func() listing.Reader) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [file]",
		Short: "Print the listing type of each document (reads stdin without a file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := readListings(cmd, args, reader())
			if err != nil {
				return err
			}
			for _, l := range listings {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", l.Common().ID, l.ListingType())
			}
			return nil
		},
	}
}

func newDecodeCmd(reader func() listing.Reader) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode documents and print them as listingType/listing envelopes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := readListings(cmd, args, reader())
			if err != nil {
				return err
			}
			envs := make([]listing.Envelope, len(listings))
			for i, l := range listings {
				envs[i] = listing.Wrap(l)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(envs)
		},
	}
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "indent output")
	return cmd
}

// readListings decodes the file named by args, or stdin when there is none
// or it is "-".
func readListings(cmd *cobra.Command, args []string, rd listing.Reader) ([]listing.Listing, error) {
	in := cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	listings, err := rd.ReadAll(in)
	if err != nil {
		return nil, explain(err)
	}
	return listings, nil
}

func explain(err error) error {
	var de *listing.DiscriminatorError
	if errors.As(err, &de) {
		return fmt.Errorf("%s: %w", de.Kind, err)
	}
	return err
}
