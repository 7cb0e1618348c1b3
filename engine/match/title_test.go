package match

import "testing"

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		make_ string
		model string
		year  int
		want  Signal
	}{
		{
			name:  "all fields present",
			title: "2014 Mercedes-Benz CLS63 AMG",
			make_: "MERCEDES", model: "CLS63", year: 2014,
			want: Signal{HasMake: true, HasModel: true, HasYear: true},
		},
		{
			name:  "spaced title spelling matches seamless request",
			title: "2014 Mercedes-Benz CLS 63 AMG",
			make_: "MERCEDES", model: "CLS63", year: 2014,
			want: Signal{HasMake: true, HasModel: true, HasYear: true},
		},
		{
			name:  "benz alias matches mercedes request",
			title: "2014 Benz CLS 63",
			make_: "MERCEDES", model: "CLS63", year: 2014,
			want: Signal{HasMake: true, HasModel: true, HasYear: true},
		},
		{
			name:  "mercedes alias matches benz request",
			title: "Mercedes CLS63",
			make_: "BENZ",
			want:  Signal{HasMake: true},
		},
		{
			name:  "case insensitive",
			title: "honda civic for sale",
			make_: "HONDA", model: "CIVIC",
			want: Signal{HasMake: true, HasModel: true},
		},
		{
			name:  "year absent from title",
			title: "Mercedes CLS63 low miles",
			make_: "MERCEDES", model: "CLS63", year: 2014,
			want: Signal{HasMake: true, HasModel: true, HasYear: false},
		},
		{
			name:  "no constraints leaves signal empty",
			title: "2014 Mercedes-Benz CLS63",
			want:  Signal{},
		},
		{
			name:  "make missing from title",
			title: "2015 sedan clean title",
			make_: "TOYOTA", model: "CAMRY", year: 2015,
			want: Signal{HasYear: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(tt.title, tt.make_, tt.model, tt.year)
			if got != tt.want {
				t.Errorf("Title() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestContainsAnyVariant(t *testing.T) {
	tests := []struct {
		title string
		model string
		want  bool
	}{
		{"MERCEDES CLS63", "CLS63", true},
		{"MERCEDES CLS 63", "CLS 63", true},
		{"MERCEDES CLS63", "CLS 63", true},  // request spaced, title seamless
		{"MERCEDES CLS 63", "CLS63", true},  // title spaced, request seamless
		{"MERCEDES CLS63", "CLS-63", true},  // request hyphenated
		{"MERCEDES CLS-63", "CLS 63", true}, // hyphen vs space
		{"MERCEDES CLS 63", "CLS-63", true},
		{"HONDA CR-V EX", "CRV", true}, // title hyphenated, request seamless
		{"HONDA CRV EX", "CR-V", true},
		{"TOYOTA COROLLA", "CAMRY", false},
	}
	for _, tt := range tests {
		t.Run(tt.title+"/"+tt.model, func(t *testing.T) {
			if got := containsAnyVariant(tt.title, tt.model); got != tt.want {
				t.Errorf("containsAnyVariant(%q, %q) = %v, want %v", tt.title, tt.model, got, tt.want)
			}
		})
	}
}

func TestIsPart(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"2014 Mercedes CLS63 OEM bumper", true},
		{"Honda Civic driver rear door", true},
		{"Front fender for Toyota Camry", true},
		{"Set of 4 BMW wheels and rims", true},
		{"2014 Mercedes-Benz CLS63 AMG", false},
		{"2015 Honda Civic EX clean title", false},
		{"honda civic headlight assembly", true},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := IsPart(tt.title); got != tt.want {
				t.Errorf("IsPart(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}
