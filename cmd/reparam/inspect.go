package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/born-ml/reparam/internal/serialization"
	"github.com/born-ml/reparam/internal/tensor"
)

func runInspect(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: reparam inspect <file.safetensors>", errUsage)
	}

	tensors, metadata, err := serialization.ReadFile(args[0], tensor.CPU)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(stdout, "%s=%s\n", k, metadata[k])
	}

	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(stdout, "[%s]\n", name)
		if err := printTensor(stdout, tensors[name]); err != nil {
			return err
		}
	}
	return nil
}
