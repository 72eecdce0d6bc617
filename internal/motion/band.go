package motion

import "fmt"

// Band is a qualitative speed class. The numeric order is the speed order.
type Band int

const (
	Pausa Band = iota
	Lento
	Medio
	Rapido
)

var Bands = []Band{Pausa, Lento, Medio, Rapido}

var bandNames = [...]string{"pausa", "lento", "medio", "rapido"}

// labels as shown in the speed indicator
var bandLabels = [...]string{"pausa", "lento", "médio", "rápido"}

func (b Band) String() string {
	if b < Pausa || b > Rapido {
		return fmt.Sprintf("band(%d)", int(b))
	}
	return bandNames[b]
}

// Label is the display form of the band.
func (b Band) Label() string {
	if b < Pausa || b > Rapido {
		return b.String()
	}
	return bandLabels[b]
}

func ParseBand(s string) (Band, error) {
	for i, name := range bandNames {
		if s == name || s == bandLabels[i] {
			return Band(i), nil
		}
	}
	return Pausa, fmt.Errorf("motion: unknown band %q", s)
}

// MarshalText lets bands be used as YAML/JSON map keys.
func (b Band) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Band) UnmarshalText(text []byte) error {
	v, err := ParseBand(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
