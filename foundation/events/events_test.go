package events_test

import (
	"testing"

	"github.com/vedhavyas/subspace/foundation/events"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Parse(t *testing.T) {
	t.Log("Given the need to tag event handler messages with their component.")
	{
		ev := events.Parse("dsn: publish: segment[3] processed")
		if ev.Component != "dsn" {
			t.Fatalf("\t%s\tShould find the component: %q", failed, ev.Component)
		}
		t.Logf("\t%s\tShould find the component.", success)

		ev = events.Parse("no component here")
		if ev.Component != "" {
			t.Fatalf("\t%s\tShould leave the component empty: %q", failed, ev.Component)
		}
		t.Logf("\t%s\tShould leave the component empty without a prefix.", success)
	}
}

func Test_Fanout(t *testing.T) {
	t.Log("Given the need to fan events out to subscribers.")
	{
		evts := events.New()

		all := evts.Acquire("all")
		dsn := evts.Acquire("dsn", "dsn")

		evts.Send(events.Parse("archiver: segment archived"))
		evts.Send(events.Parse("dsn: segment published"))

		if len(all) != 2 {
			t.Fatalf("\t%s\tShould deliver every event to an unfiltered subscriber: %d", failed, len(all))
		}
		t.Logf("\t%s\tShould deliver every event to an unfiltered subscriber.", success)

		if len(dsn) != 1 || (<-dsn).Component != "dsn" {
			t.Fatalf("\t%s\tShould deliver only the wanted component.", failed)
		}
		t.Logf("\t%s\tShould deliver only the wanted component.", success)

		if err := evts.Release("dsn"); err != nil || evts.Len() != 1 {
			t.Fatalf("\t%s\tShould release a subscriber: %v", failed, err)
		}
		if err := evts.Release("dsn"); err == nil {
			t.Fatalf("\t%s\tShould fail to release twice.", failed)
		}
		t.Logf("\t%s\tShould release a subscriber once.", success)

		evts.Shutdown()
		if _, open := <-all; !open {
			t.Fatalf("\t%s\tShould keep buffered events after shutdown.", failed)
		}
		<-all
		if _, open := <-all; open {
			t.Fatalf("\t%s\tShould close the channel on shutdown.", failed)
		}
		t.Logf("\t%s\tShould close the channels on shutdown.", success)
	}
}
