package database

import "testing"

func TestResolveSort(t *testing.T) {
	tests := []struct {
		name    string
		order   string
		allowed []string
		want    SortOption
	}{
		{"empty uses default", "", BookSortOrders, SortOption{Column: "title"}},
		{"allowed order", SortTitleDesc, BookSortOrders, SortOption{Column: "title", Desc: true}},
		{"natural order", SortNameNat, GenreSortOrders, SortOption{Column: "name", Natural: true}},
		{"other page's order falls back", SortTitleAsc, AuthorSortOrders, SortOption{Column: "family_name"}},
		{"unknown order falls back", "bogus", BookInstanceSortOrders, SortOption{Column: "due_back"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveSort(tt.order, tt.allowed); got != tt.want {
				t.Errorf("ResolveSort(%q) = %+v, want %+v", tt.order, got, tt.want)
			}
		})
	}
}

func TestIsValidSortOrder(t *testing.T) {
	if !IsValidSortOrder(SortFamilyNameAsc) {
		t.Error("expected family_name_asc to be valid")
	}
	if IsValidSortOrder("filename_asc") {
		t.Error("expected filename_asc to be invalid")
	}
}
