package model

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a module into one of a fixed category set. The set is
// closed: besides the named categories there is exactly one payload case,
// constructed with OtherKind, that carries a free-form label.
//
// The zero value is not a valid Kind; use the package variables.
type Kind struct {
	name    string
	isOther bool
}

var (
	KindCore           = Kind{name: "Core"}
	KindDataProcessing = Kind{name: "DataProcessing"}
	KindAI             = Kind{name: "AI"}
	KindPerformance    = Kind{name: "Performance"}
	KindValidation     = Kind{name: "Validation"}
	KindExecution      = Kind{name: "Execution"}
	KindIntegration    = Kind{name: "Integration"}
	KindAPI            = Kind{name: "API"}
	KindProcessing     = Kind{name: "Processing"}
	KindScaffold       = Kind{name: "Scaffold"}
	KindTesting        = Kind{name: "Testing"}
	KindUtilities      = Kind{name: "Utilities"}
	KindConfiguration  = Kind{name: "Configuration"}
	KindDatabase       = Kind{name: "Database"}
	KindNetwork        = Kind{name: "Network"}
	KindSecurity       = Kind{name: "Security"}
	KindLogging        = Kind{name: "Logging"}
	KindMonitoring     = Kind{name: "Monitoring"}
)

var namedKinds = map[string]Kind{
	"Core":           KindCore,
	"DataProcessing": KindDataProcessing,
	"AI":             KindAI,
	"Performance":    KindPerformance,
	"Validation":     KindValidation,
	"Execution":      KindExecution,
	"Integration":    KindIntegration,
	"API":            KindAPI,
	"Processing":     KindProcessing,
	"Scaffold":       KindScaffold,
	"Testing":        KindTesting,
	"Utilities":      KindUtilities,
	"Configuration":  KindConfiguration,
	"Database":       KindDatabase,
	"Network":        KindNetwork,
	"Security":       KindSecurity,
	"Logging":        KindLogging,
	"Monitoring":     KindMonitoring,
}

// OtherKind returns the payload-carrying category with the given label.
func OtherKind(label string) Kind {
	return Kind{name: label, isOther: true}
}

// IsOther reports whether k is the payload-carrying category.
func (k Kind) IsOther() bool { return k.isOther }

// Label returns the payload of an Other kind and the empty string otherwise.
func (k Kind) Label() string {
	if k.isOther {
		return k.name
	}
	return ""
}

func (k Kind) String() string {
	if k.isOther {
		return fmt.Sprintf("Other(%s)", k.name)
	}
	return k.name
}

// DisplayName returns the human-facing name used by renderers.
func (k Kind) DisplayName() string {
	if k.isOther {
		return k.name
	}
	switch k {
	case KindDataProcessing:
		return "Data Processing"
	default:
		return k.name
	}
}

// Color returns the hex color assigned to this category.
func (k Kind) Color() string {
	if k.isOther {
		return "#bdc3c7"
	}
	switch k {
	case KindCore:
		return "#e74c3c"
	case KindDataProcessing:
		return "#3498db"
	case KindAI:
		return "#9b59b6"
	case KindPerformance:
		return "#f39c12"
	case KindValidation:
		return "#2ecc71"
	case KindExecution:
		return "#1abc9c"
	case KindIntegration:
		return "#34495e"
	case KindAPI:
		return "#e67e22"
	case KindProcessing:
		return "#8e44ad"
	case KindScaffold:
		return "#16a085"
	case KindTesting:
		return "#f1c40f"
	case KindUtilities:
		return "#95a5a6"
	case KindConfiguration:
		return "#7f8c8d"
	case KindDatabase:
		return "#27ae60"
	case KindNetwork:
		return "#2980b9"
	case KindSecurity:
		return "#c0392b"
	case KindLogging:
		return "#8e44ad"
	case KindMonitoring:
		return "#d35400"
	default:
		return "#bdc3c7"
	}
}

// Icon returns the glyph assigned to this category.
func (k Kind) Icon() string {
	if k.isOther {
		return "📦"
	}
	switch k {
	case KindDataProcessing:
		return "📊"
	case KindAI:
		return "🤖"
	case KindPerformance:
		return "⚡"
	case KindValidation:
		return "✅"
	case KindExecution:
		return "▶️"
	case KindIntegration:
		return "🔗"
	case KindAPI, KindNetwork:
		return "🌐"
	case KindScaffold:
		return "🏗️"
	case KindTesting:
		return "🧪"
	case KindUtilities:
		return "🛠️"
	case KindDatabase:
		return "🗄️"
	case KindSecurity:
		return "🔒"
	case KindLogging:
		return "📝"
	case KindMonitoring:
		return "📈"
	default:
		return "⚙️"
	}
}

// MarshalJSON encodes named categories as bare strings and the Other case
// as a single-key object, e.g. "Core" and {"Other":"plugin"}. The layout
// matches the interchange format consumed by existing renderers.
func (k Kind) MarshalJSON() ([]byte, error) {
	if k.isOther {
		return json.Marshal(map[string]string{"Other": k.name})
	}
	if _, ok := namedKinds[k.name]; !ok {
		return nil, fmt.Errorf("invalid module kind %q", k.name)
	}
	return json.Marshal(k.name)
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		named, ok := namedKinds[name]
		if !ok {
			return fmt.Errorf("unknown module kind %q", name)
		}
		*k = named
		return nil
	}

	var tagged map[string]string
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("module kind must be a string or {\"Other\": label}: %w", err)
	}
	label, ok := tagged["Other"]
	if !ok || len(tagged) != 1 {
		return fmt.Errorf("unknown module kind variant %v", tagged)
	}
	*k = OtherKind(label)
	return nil
}
