package catalog

import "testing"

func TestProductFromTextLabeledFields(t *testing.T) {
	paragraphs := []string{
		"اسم المنتج بالإنجليزي: Mi Smart Kettle Pro",
		"رقم الموديل: MJHWSH02YM",
		"الوزن: 1250 جرام",
	}
	p := productFromText(paragraphs, "الوزن: 1250 جرام")

	if p.NameEN != "Mi Smart Kettle Pro" {
		t.Fatalf("NameEN = %q", p.NameEN)
	}
	if p.ModelNumber != "MJHWSH02YM" {
		t.Fatalf("ModelNumber = %q", p.ModelNumber)
	}
	if p.WeightGrams != 1250 {
		t.Fatalf("WeightGrams = %v", p.WeightGrams)
	}
	if p.Method != MethodInlineHTML {
		t.Fatalf("Method = %q", p.Method)
	}
}

func TestProductFromTextMissingEverything(t *testing.T) {
	p := productFromText([]string{"جهاز منزلي ممتاز"}, "جهاز منزلي ممتاز")

	if p.NameEN != "Unknown" {
		t.Fatalf("NameEN should default to Unknown, got %q", p.NameEN)
	}
	if p.ModelNumber != "" {
		t.Fatalf("ModelNumber should stay empty, got %q", p.ModelNumber)
	}
	if p.Method != MethodNotDetected {
		t.Fatalf("Method = %q", p.Method)
	}
	if p.WeightGrams != 0 {
		t.Fatalf("WeightGrams = %v", p.WeightGrams)
	}
}

func TestProductFromTextUnavailableModel(t *testing.T) {
	p := productFromText([]string{"رقم الموديل: غير متوفر"}, "")
	if p.ModelNumber != "" {
		t.Fatalf("unavailable marker should map to empty model, got %q", p.ModelNumber)
	}
}

func TestProductFromTextApproximateWeight(t *testing.T) {
	full := "الوزن حوالي 320 جرام تقريبا"
	p := productFromText(nil, full)
	if p.WeightGrams != 320 {
		t.Fatalf("WeightGrams = %v", p.WeightGrams)
	}
	if p.Method != MethodInlineHTML {
		t.Fatalf("Method = %q", p.Method)
	}
}

func TestLabeledValueSeparators(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"اسم المنتج بالإنجليزي: Air Purifier 4", "Air Purifier 4"},
		{"اسم المنتج بالإنجليزي : Air Purifier 4", "Air Purifier 4"},
		{"اسم المنتج بالإنجليزي Air Purifier 4", "Air Purifier 4"},
	}
	for _, c := range cases {
		got, ok := labeledValue(c.line, "اسم المنتج بالإنجليزي")
		if !ok || got != c.want {
			t.Fatalf("labeledValue(%q) = %q, %v", c.line, got, ok)
		}
	}
	if _, ok := labeledValue("شيء آخر", "اسم المنتج بالإنجليزي"); ok {
		t.Fatal("unrelated line should not match")
	}
}
