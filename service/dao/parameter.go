package dao

// Parameter narrows List results, e.g. NewParameter("Status", "error") to
// list processes requiring operator attention.
type Parameter struct {
	Name  string
	Value interface{}
}

func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// FilterByStatus evaluates status filter parameters against a status value.
// With no parameters everything matches.
func FilterByStatus(status string, parameters []*Parameter) bool {
	for _, parameter := range parameters {
		if parameter.Name != "Status" {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			if status != actual {
				return false
			}
		case []string:
			matched := false
			for _, s := range actual {
				if status == s {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}
