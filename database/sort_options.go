package database

const (
	SortTitleAsc       = "title_asc"
	SortTitleDesc      = "title_desc"
	SortTitleNat       = "title_nat"
	SortFamilyNameAsc  = "family_name_asc"
	SortFamilyNameDesc = "family_name_desc"
	SortNameAsc        = "name_asc"
	SortNameDesc       = "name_desc"
	SortNameNat        = "name_nat"
	SortDueBackAsc     = "due_back_asc"
	SortDueBackDesc    = "due_back_desc"
)

// allowed orders per list page; the first entry is the default
var (
	BookSortOrders         = []string{SortTitleAsc, SortTitleDesc, SortTitleNat}
	AuthorSortOrders       = []string{SortFamilyNameAsc, SortFamilyNameDesc}
	GenreSortOrders        = []string{SortNameAsc, SortNameDesc, SortNameNat}
	BookInstanceSortOrders = []string{SortDueBackAsc, SortDueBackDesc}
)

// SortOption maps a sort key onto a column and direction. Natural orders are
// applied in memory after the query, on top of the ascending column order.
type SortOption struct {
	Column  string
	Desc    bool
	Natural bool
}

var sortOptions = map[string]SortOption{
	SortTitleAsc:       {Column: "title"},
	SortTitleDesc:      {Column: "title", Desc: true},
	SortTitleNat:       {Column: "title", Natural: true},
	SortFamilyNameAsc:  {Column: "family_name"},
	SortFamilyNameDesc: {Column: "family_name", Desc: true},
	SortNameAsc:        {Column: "name"},
	SortNameDesc:       {Column: "name", Desc: true},
	SortNameNat:        {Column: "name", Natural: true},
	SortDueBackAsc:     {Column: "due_back"},
	SortDueBackDesc:    {Column: "due_back", Desc: true},
}

// IsValidSortOrder checks if a string is a valid sort order constant
func IsValidSortOrder(order string) bool {
	_, ok := sortOptions[order]
	return ok
}

// ResolveSort returns the option for order when it is one of allowed, and the
// option of allowed[0] otherwise.
func ResolveSort(order string, allowed []string) SortOption {
	for _, a := range allowed {
		if a == order {
			return sortOptions[order]
		}
	}
	if len(allowed) == 0 {
		return SortOption{}
	}
	return sortOptions[allowed[0]]
}
