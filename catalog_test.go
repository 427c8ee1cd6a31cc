package main

import (
	"testing"

	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"github.com/gin-gonic/gin"
)

func TestBuildProductFilters_Shape(t *testing.T) {
	payload := buildProductFilters(
		[]string{"Perfume"},
		[]string{"Amouage"},
		map[string][]string{"Colour": {"Gold", "Red"}},
		[]models.ItemGroup{{Name: "Attar", ParentGroup: "Perfume"}},
	)

	filters, ok := payload["filters"].(gin.H)
	if !ok {
		t.Fatalf("payload has no filters object: %+v", payload)
	}
	fieldFilters, ok := filters["field_filters"].(gin.H)
	if !ok {
		t.Fatalf("filters has no field_filters object: %+v", filters)
	}
	if groups := fieldFilters["item_group"].([]string); len(groups) != 1 || groups[0] != "Perfume" {
		t.Fatalf("item_group filter wrong: %v", groups)
	}
	if brands := fieldFilters["brand"].([]string); len(brands) != 1 || brands[0] != "Amouage" {
		t.Fatalf("brand filter wrong: %v", brands)
	}
	attrs, ok := filters["attribute_filters"].(map[string][]string)
	if !ok {
		t.Fatalf("filters has no attribute_filters map: %+v", filters)
	}
	if len(attrs["Colour"]) != 2 {
		t.Fatalf("attribute values wrong: %v", attrs)
	}
	subs, ok := payload["sub_categories"].([]models.ItemGroup)
	if !ok || len(subs) != 1 {
		t.Fatalf("sub_categories wrong: %+v", payload["sub_categories"])
	}
}

// A broken attribute lookup degrades to an empty map, never a missing key.
func TestBuildProductFilters_NilAttributes(t *testing.T) {
	payload := buildProductFilters([]string{}, []string{}, nil, []models.ItemGroup{})
	filters := payload["filters"].(gin.H)
	attrs, ok := filters["attribute_filters"].(map[string][]string)
	if !ok {
		t.Fatalf("attribute_filters missing: %+v", filters)
	}
	if len(attrs) != 0 {
		t.Fatalf("expected empty attribute_filters, got %v", attrs)
	}
}
