package sequence_test

import (
	"testing"

	"github.com/okian/robonalysis/internal/domain/model"
	"github.com/okian/robonalysis/internal/domain/sequence"
	. "github.com/smartystreets/goconvey/convey"
)

func ids(ms []model.Match) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestOrdering(t *testing.T) {
	Convey("Given matches in arrival order", t, func() {
		in := []model.Match{
			{ID: "c", EffectiveTime: 300},
			{ID: "a", EffectiveTime: 100},
			{ID: "t1", EffectiveTime: 200},
			{ID: "t2", EffectiveTime: 200},
			{ID: "z", EffectiveTime: 0},
		}

		Convey("When sorting ascending", func() {
			out := sequence.Ascending(in)

			Convey("Then the oldest should come first and ties keep input order", func() {
				So(ids(out), ShouldResemble, []string{"z", "a", "t1", "t2", "c"})
			})

			Convey("Then the input should be left untouched", func() {
				So(ids(in), ShouldResemble, []string{"c", "a", "t1", "t2", "z"})
			})
		})

		Convey("When sorting newest first", func() {
			out := sequence.NewestFirst(in)

			Convey("Then the newest should come first and ties keep input order", func() {
				So(ids(out), ShouldResemble, []string{"c", "t1", "t2", "a", "z"})
			})
		})
	})
}

func TestGroupByEvent(t *testing.T) {
	Convey("Given matches from several events", t, func() {
		in := []model.Match{
			{ID: "1", EventID: "e2", EffectiveTime: 50},
			{ID: "2", EventID: "e1", EffectiveTime: 20},
			{ID: "3", EventID: "", EffectiveTime: 10},
			{ID: "4", EventID: "e2", EffectiveTime: 5},
		}

		Convey("When grouping", func() {
			groups := sequence.GroupByEvent(in)

			Convey("Then groups should follow first-seen order and skip missing events", func() {
				So(groups, ShouldHaveLength, 2)
				So(groups[0].EventID, ShouldEqual, "e2")
				So(ids(groups[0].Matches), ShouldResemble, []string{"1", "4"})
				So(groups[1].EventID, ShouldEqual, "e1")
				So(sequence.EventIDs(in), ShouldResemble, []string{"e2", "e1"})
			})
		})

		Convey("When building timelines", func() {
			groups := sequence.Timelines(in)

			Convey("Then each timeline should be ascending", func() {
				So(ids(groups[0].Matches), ShouldResemble, []string{"4", "1"})
			})
		})
	})
}
