package dedupe_test

import (
	"testing"

	dedupe "github.com/okian/robonalysis/internal/domain/dedupe"
	"github.com/okian/robonalysis/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLatest(t *testing.T) {
	Convey("Given overlapping pages of match records", t, func() {
		Convey("When one duplicate is strictly newer", func() {
			out := dedupe.Latest([]model.Match{
				{ID: "m1", EffectiveTime: 200, Name: "new"},
				{ID: "m2", EffectiveTime: 50},
				{ID: "m1", EffectiveTime: 100, Name: "old"},
			})

			Convey("Then only the newer record should be retained", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].ID, ShouldEqual, "m1")
				So(out[0].Name, ShouldEqual, "new")
				So(out[1].ID, ShouldEqual, "m2")
			})
		})

		Convey("When duplicates share the same time", func() {
			out := dedupe.Latest([]model.Match{
				{ID: "m1", EffectiveTime: 100, Name: "first"},
				{ID: "m1", EffectiveTime: 100, Name: "second"},
			})

			Convey("Then the later-seen record should win", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].Name, ShouldEqual, "second")
			})
		})

		Convey("When the input is empty", func() {
			out := dedupe.Latest(nil)

			Convey("Then the output should be empty", func() {
				So(out, ShouldBeEmpty)
			})
		})
	})
}

func TestSet(t *testing.T) {
	Convey("Given a new Set", t, func() {
		s := dedupe.NewSet()

		Convey("When adding records incrementally", func() {
			So(s.Add(model.Match{ID: "a", EffectiveTime: 10}), ShouldBeTrue)
			So(s.Add(model.Match{ID: "b", EffectiveTime: 5}), ShouldBeTrue)
			So(s.Add(model.Match{ID: "a", EffectiveTime: 9}), ShouldBeFalse)
			So(s.Add(model.Match{ID: "a", EffectiveTime: 11}), ShouldBeTrue)

			Convey("Then each identity should appear once", func() {
				So(s.Len(), ShouldEqual, 2)
				out := s.Matches()
				So(out[0].EffectiveTime, ShouldEqual, 11)
				So(out[1].ID, ShouldEqual, "b")
			})

			Convey("Then the returned slice should be a copy", func() {
				out := s.Matches()
				out[0].ID = "mutated"
				So(s.Matches()[0].ID, ShouldEqual, "a")
			})
		})

		Convey("When a custom recency key is used", func() {
			byName := dedupe.NewSet(dedupe.WithRecency(func(m model.Match) int64 {
				return int64(len(m.UpdatedAt))
			}))
			byName.AddAll([]model.Match{
				{ID: "a", EffectiveTime: 100, UpdatedAt: "2024-01-02T00:00:00Z"},
				{ID: "a", EffectiveTime: 999, UpdatedAt: ""},
			})

			Convey("Then the key should decide which record is kept", func() {
				So(byName.Matches()[0].EffectiveTime, ShouldEqual, 100)
			})
		})
	})
}
