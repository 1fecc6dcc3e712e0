package services

import (
	"bytes"
	"errors"
	"testing"
)

func TestPDFRendererProducesValidPDF(t *testing.T) {
	project := sampleProject()
	ctx := BuildContext(project, Aggregate(project))

	data, err := NewPDFRenderer().Render(TemplateQuotationMain, ctx)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("rendered PDF is empty")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with the PDF magic: %q", data[:8])
	}
}

func TestPDFRendererRecoAirDocument(t *testing.T) {
	project := sampleProject()
	project.Levels[0].Areas = append(project.Levels[0].Areas, Area{
		Name:    "Plant Room",
		Options: AreaOptions{RecoAir: true},
		Items: []Item{
			{Ref: "3.01", Model: "RA1", Kind: KindRecoAir, BasePrice: 12000},
		},
	})
	ctx := BuildContext(project, Aggregate(project))

	data, err := NewPDFRenderer().Render(TemplateQuotationRecoAir, ctx)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("RecoAir document is not a PDF")
	}
}

func TestPDFRendererUnknownTemplate(t *testing.T) {
	_, err := NewPDFRenderer().Render("quotation/unknown", Namespace{})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("err = %v, want ErrTemplateNotFound", err)
	}
}
