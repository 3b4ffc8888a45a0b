package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseInfoDef parses the info.yaml of the named generator.
func ParseInfoDef(module string, data []byte) (*ModuleInfoDef, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%w: %s: empty document", ErrInvalidInfoDef, module)
	}

	var def ModuleInfoDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInfoDef, module, err)
	}
	if err := checkPropDefs(def.Props, ""); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInfoDef, module, err)
	}
	def.Module = module
	return &def, nil
}

func checkPropDefs(defs []PropertyDef, prefix string) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("property without id under %q", prefix)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate property %q", prefix+d.ID)
		}
		seen[d.ID] = true
		if err := checkPropDefs(d.Props, prefix+d.ID+"."); err != nil {
			return err
		}
	}
	return nil
}

// ParseEnums parses an enum catalog. Empty input yields an empty catalog.
func ParseEnums(data []byte) (Enums, error) {
	enums := Enums{}
	if strings.TrimSpace(string(data)) == "" {
		return enums, nil
	}
	if err := yaml.Unmarshal(data, &enums); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnums, err)
	}
	for id, vals := range enums {
		for i, v := range vals {
			if v.ID == "" {
				return nil, fmt.Errorf("%w: %s[%d] has no id", ErrInvalidEnums, id, i)
			}
		}
	}
	return enums, nil
}
