package paging

import (
	"net/http/httptest"
	"testing"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 12, 1},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{25, 12, 3},
		{100, 0, 1},
		{100, -5, 1},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.n, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		size       int
		page       int
		wantNumber int
		wantLen    int
		wantFirst  int
		wantPrev   bool
		wantNext   bool
	}{
		{"first page", 25, 12, 1, 1, 12, 1, false, true},
		{"middle page", 25, 12, 2, 2, 12, 13, true, true},
		{"last partial page", 25, 12, 3, 3, 1, 25, true, false},
		{"clamped high", 25, 12, 99, 3, 1, 25, true, false},
		{"clamped low", 25, 12, 0, 1, 12, 1, false, true},
		{"negative page", 25, 12, -3, 1, 12, 1, false, true},
		{"unlimited", 25, Unlimited, 4, 1, 25, 1, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(seq(tt.n), tt.size, tt.page)
			if p.Number != tt.wantNumber {
				t.Errorf("Number = %d, want %d", p.Number, tt.wantNumber)
			}
			if len(p.Items) != tt.wantLen {
				t.Fatalf("len(Items) = %d, want %d", len(p.Items), tt.wantLen)
			}
			if p.Items[0] != tt.wantFirst {
				t.Errorf("Items[0] = %d, want %d", p.Items[0], tt.wantFirst)
			}
			if p.HasPrev != tt.wantPrev || p.HasNext != tt.wantNext {
				t.Errorf("HasPrev/HasNext = %v/%v, want %v/%v", p.HasPrev, p.HasNext, tt.wantPrev, tt.wantNext)
			}
			if p.TotalItems != tt.n {
				t.Errorf("TotalItems = %d, want %d", p.TotalItems, tt.n)
			}
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate([]int{}, PublicPageSize, 5)
	if p.Number != 1 || p.TotalPages != 1 || len(p.Items) != 0 {
		t.Errorf("Paginate(empty) = %+v, want page 1 of 1 with no items", p)
	}
	if p.HasPrev || p.HasNext {
		t.Error("empty list should have no neighbours")
	}
}

func TestPaginate_ConcatenationReproducesList(t *testing.T) {
	items := seq(37)
	first := Paginate(items, PublicPageSize, 1)
	var all []int
	for n := 1; n <= first.TotalPages; n++ {
		all = append(all, Paginate(items, PublicPageSize, n).Items...)
	}
	if len(all) != len(items) {
		t.Fatalf("concatenated %d items, want %d", len(all), len(items))
	}
	for i := range items {
		if all[i] != items[i] {
			t.Fatalf("item %d = %d, want %d", i, all[i], items[i])
		}
	}
}

func TestPaginate_CopiesItems(t *testing.T) {
	items := seq(3)
	p := Paginate(items, 2, 1)
	p.Items[0] = 100
	if items[0] != 1 {
		t.Error("Paginate() Items aliases the input")
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/listings", 1},
		{"/listings?page=3", 3},
		{"/listings?page=0", 1},
		{"/listings?page=-2", 1},
		{"/listings?page=abc", 1},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		if got := ParsePage(r); got != tt.want {
			t.Errorf("ParsePage(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestParsePageSize(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/properties?page_size=25", nil)
	if got := ParsePageSize(r, Unlimited); got != 25 {
		t.Errorf("ParsePageSize() = %d, want 25", got)
	}
	r = httptest.NewRequest("GET", "/admin/properties", nil)
	if got := ParsePageSize(r, Unlimited); got != Unlimited {
		t.Errorf("ParsePageSize() = %d, want %d", got, Unlimited)
	}
}
