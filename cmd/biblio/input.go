package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

// entityFlags collects the flags shared by create and update.
type entityFlags struct {
	file           string
	note           string
	name           string
	sortName       string
	language       int64
	data           string
	annotation     string
	disambiguation string
	identifiers    []string
	removeAliases  []int64
	removeIDs      []int64
}

func (f *entityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "JSON file holding the full input (other flags are merged on top)")
	cmd.Flags().StringVarP(&f.note, "note", "n", "", "Revision note")
	cmd.Flags().StringVar(&f.name, "name", "", "Add an alias and make it the default")
	cmd.Flags().StringVar(&f.sortName, "sort-name", "", "Sort name of the alias added with --name")
	cmd.Flags().Int64Var(&f.language, "language", 0, "Language ID of the alias added with --name")
	cmd.Flags().StringVar(&f.data, "data", "", "Kind-specific data as a JSON object, merged into the current data")
	cmd.Flags().StringVar(&f.annotation, "annotation", "", "Annotation text")
	cmd.Flags().StringVar(&f.disambiguation, "disambiguation", "", "Disambiguation comment")
	cmd.Flags().StringSliceVar(&f.identifiers, "identifier", nil, "Add an identifier as type_id=value (repeatable)")
	cmd.Flags().Int64SliceVar(&f.removeAliases, "remove-alias", nil, "Remove an alias by ID (repeatable)")
	cmd.Flags().Int64SliceVar(&f.removeIDs, "remove-identifier", nil, "Remove an identifier by ID (repeatable)")
}

// build turns the flags into an EntityInput. Flags left unset do not touch
// the snapshot.
func (f *entityFlags) build(cmd *cobra.Command) (*entities.EntityInput, error) {
	in := &entities.EntityInput{}
	if f.file != "" {
		raw, err := os.ReadFile(f.file)
		if err != nil {
			return nil, fmt.Errorf("reading input file: %w", err)
		}
		if err := json.Unmarshal(raw, in); err != nil {
			return nil, fmt.Errorf("parsing input file: %w", err)
		}
	}

	if f.note != "" {
		in.Note = f.note
	}
	if f.data != "" {
		if !json.Valid([]byte(f.data)) {
			return nil, errors.New("--data is not valid JSON")
		}
		in.Data = json.RawMessage(f.data)
	}
	if cmd.Flags().Changed("annotation") {
		annotation := f.annotation
		in.Annotation = &annotation
	}
	if cmd.Flags().Changed("disambiguation") {
		disambiguation := f.disambiguation
		in.Disambiguation = &disambiguation
	}

	for _, id := range f.removeAliases {
		in.Aliases = append(in.Aliases, entities.DeleteAlias(id))
	}
	if f.name != "" {
		name, primary, isDefault := f.name, true, true
		alias := entities.AliasInput{Name: &name, Primary: &primary, Default: &isDefault}
		if f.sortName != "" {
			sortName := f.sortName
			alias.SortName = &sortName
		}
		if f.language > 0 {
			language := f.language
			alias.LanguageID = &language
		}
		in.Aliases = append(in.Aliases, entities.InsertAlias(alias))
	}

	for _, id := range f.removeIDs {
		removed := id
		in.Identifiers = append(in.Identifiers, entities.IdentifierChange{ID: &removed})
	}
	for _, spec := range f.identifiers {
		change, err := parseIdentifier(spec)
		if err != nil {
			return nil, err
		}
		in.Identifiers = append(in.Identifiers, change)
	}

	return in, nil
}

// parseIdentifier parses "type_id=value".
func parseIdentifier(spec string) (entities.IdentifierChange, error) {
	typePart, value, ok := strings.Cut(spec, "=")
	if !ok || strings.TrimSpace(value) == "" {
		return entities.IdentifierChange{}, fmt.Errorf("invalid identifier %q (want type_id=value)", spec)
	}
	typeID, err := strconv.ParseInt(strings.TrimSpace(typePart), 10, 64)
	if err != nil {
		return entities.IdentifierChange{}, fmt.Errorf("invalid identifier type in %q: %w", spec, err)
	}
	value = strings.TrimSpace(value)
	return entities.IdentifierChange{
		Value: &entities.IdentifierInput{TypeID: &typeID, Value: &value},
	}, nil
}
