package query

import (
	"strings"

	roaring "github.com/RoaringBitmap/roaring"

	"github.com/MaharajTanim/video-browser-pro/vbp/catalog"
)

// AttributeBitmaps holds roaring posting lists over catalog ordinals, keyed
// by attribute value: one bitmap per extension, one per quality bucket, one
// for favorites. Intersecting them answers the format/quality/favorite part
// of a projection without touching every entry.
type AttributeBitmaps struct {
	ext     map[string]*roaring.Bitmap
	quality map[catalog.QualityBucket]*roaring.Bitmap
	favs    *roaring.Bitmap
	all     *roaring.Bitmap
}

// BuildBitmaps indexes a snapshot. Ordinals are snapshot positions, so the
// index is only valid for the exact entry slice it was built from.
func BuildBitmaps(entries []*catalog.Entry) *AttributeBitmaps {
	ab := &AttributeBitmaps{
		ext:     make(map[string]*roaring.Bitmap),
		quality: make(map[catalog.QualityBucket]*roaring.Bitmap),
		favs:    roaring.New(),
		all:     roaring.New(),
	}
	for i, e := range entries {
		ord := uint32(i)
		ab.all.Add(ord)
		ab.addExt(e.Extension, ord)
		ab.addQuality(e.Quality(), ord)
		if e.IsFavorite {
			ab.favs.Add(ord)
		}
	}
	return ab
}

func (ab *AttributeBitmaps) addExt(ext string, ord uint32) {
	bm, ok := ab.ext[ext]
	if !ok {
		bm = roaring.New()
		ab.ext[ext] = bm
	}
	bm.Add(ord)
}

func (ab *AttributeBitmaps) addQuality(bucket catalog.QualityBucket, ord uint32) {
	bm, ok := ab.quality[bucket]
	if !ok {
		bm = roaring.New()
		ab.quality[bucket] = bm
	}
	bm.Add(ord)
}

// Candidates intersects the bitmap filters of a spec and returns the
// surviving ordinals. Search text and playlist membership are not bitmap
// attributes and stay predicate-side.
func (ab *AttributeBitmaps) Candidates(spec Spec) *roaring.Bitmap {
	res := ab.clone(ab.all)
	if spec.FormatFilter != "" && spec.FormatFilter != FilterAll {
		res.And(ab.lookup(ab.ext[normalizeExt(spec.FormatFilter)]))
	}
	if spec.QualityFilter != "" && spec.QualityFilter != FilterAll {
		res.And(ab.lookup(ab.quality[catalog.QualityBucket(spec.QualityFilter)]))
	}
	if spec.FavoritesOnly {
		res.And(ab.favs)
	}
	return res
}

func (ab *AttributeBitmaps) lookup(b *roaring.Bitmap) *roaring.Bitmap {
	if b == nil {
		return roaring.New()
	}
	return b
}

func (ab *AttributeBitmaps) clone(b *roaring.Bitmap) *roaring.Bitmap {
	c := roaring.New()
	c.Or(b) // copy
	return c
}

// normalizeExt matches the catalog's extension normalization: lowercase,
// no leading dot.
func normalizeExt(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "."))
}
