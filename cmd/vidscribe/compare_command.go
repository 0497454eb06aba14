package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vidscribe/internal/services"
	"vidscribe/internal/transcript"
)

func newCompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "compare <reference> <transcript>",
		Short:       "Score a transcript against a reference text",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, err := readText(args[0])
			if err != nil {
				return err
			}
			transcribed, err := readText(args[1])
			if err != nil {
				return err
			}

			cmp := transcript.CompareDetailed(reference, transcribed)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accuracy: %.2f%%\n", cmp.Accuracy*100)
			fmt.Fprintf(out, "Word overlap: %.2f%%\n", cmp.WordOverlap*100)
			fmt.Fprintf(out, "Words: %d reference, %d transcript\n", cmp.ReferenceWords, cmp.TranscriptWords)
			return nil
		},
	}
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", services.Wrap(services.ErrNotFound, "", "compare", "file not found: "+path, nil)
	}
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "", "compare", "read "+path, err)
	}
	return string(data), nil
}
