package asset_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Ceichert31/VulkanRenderer/asset"
)

var (
	testSpirv1 = []byte("idunvovkjnreovmegihjbrqlkmfrjnb")
	testSpirv2 = []byte("idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb")
)

func TestCreateAndRead(t *testing.T) {
	builder := asset.NewBuilder(1)
	if err := builder.Add("triangle.vert", asset.StageVertex, testSpirv1); err != nil {
		t.Error(err)
	}
	if err := builder.Add("triangle.frag", asset.StageFragment, testSpirv2); err != nil {
		t.Error(err)
	}

	buf := bytes.NewBuffer([]byte{})
	if written, err := builder.WriteTo(buf); err != nil {
		t.Error(err)
	} else {
		t.Logf("written %d", written)
	}

	bundle, err := asset.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	f, err := bundle.Open("triangle.vert")
	if err != nil {
		t.Fatal(err)
	}

	result := make([]byte, len(testSpirv1))
	n, err := f.Read(result)
	if err != nil {
		t.Error(err)
	}
	t.Log(n)

	if !bytes.Equal(result, testSpirv1) {
		t.Error("shader contents do not match up")
	}
}

func TestCreateAndReadAll(t *testing.T) {
	builder := asset.NewBuilder(1)
	if err := builder.Add("triangle.vert", asset.StageVertex, testSpirv1); err != nil {
		t.Error(err)
	}
	if err := builder.Add("triangle.frag", asset.StageFragment, testSpirv2); err != nil {
		t.Error(err)
	}

	buf := bytes.NewBuffer([]byte{})
	if _, err := builder.WriteTo(buf); err != nil {
		t.Error(err)
	}

	bundle, err := asset.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	frag, err := bundle.ReadAll("triangle.frag")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(frag, testSpirv2) {
		t.Error("shader contents do not match up")
	}

	vert, err := bundle.ReadAll("triangle.vert")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(vert, testSpirv1) {
		t.Error("shader contents do not match up")
	}
}

func TestIndexOrderAndStages(t *testing.T) {
	builder := asset.NewBuilder(3)
	builder.Add("a.vert", asset.StageVertex, testSpirv1)
	builder.Add("b.frag", asset.StageFragment, testSpirv2)

	buf := bytes.NewBuffer([]byte{})
	if _, err := builder.WriteTo(buf); err != nil {
		t.Error(err)
	}

	bundle, err := asset.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	if bundle.Version() != 3 {
		t.Errorf("version = %d, want 3", bundle.Version())
	}

	index := bundle.Index()
	if len(index) != 2 {
		t.Fatalf("index has %d entries, want 2", len(index))
	}
	if index[0].Name != "a.vert" || index[0].Stage != asset.StageVertex {
		t.Errorf("unexpected first entry %+v", index[0])
	}
	if index[1].Name != "b.frag" || index[1].Stage != asset.StageFragment {
		t.Errorf("unexpected second entry %+v", index[1])
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	if _, err := asset.Open(strings.NewReader("definitely not a bundle, padded well past the header region")); err != asset.ErrFileFormat {
		t.Errorf("err = %v, want ErrFileFormat", err)
	}
}

func TestMissingEntry(t *testing.T) {
	builder := asset.NewBuilder(1)
	builder.Add("triangle.vert", asset.StageVertex, testSpirv1)

	buf := bytes.NewBuffer([]byte{})
	if _, err := builder.WriteTo(buf); err != nil {
		t.Error(err)
	}

	bundle, err := asset.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := bundle.ReadAll("missing.frag"); err != asset.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
