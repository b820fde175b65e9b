package compiler

import "testing"

func TestSuspensionArtifacts(t *testing.T) {
	out := compileT(t, `
func helper {
}
func main {
    call helper() [gate]
    run("say after")
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		"scoreboard objectives add mcfq dummy",
		storReset,
		"function test:t/functions/helper",
		"schedule function test:queue/wait_main_1 1t",
	})

	// Statements after the suspension point land in the continuation, which
	// consumes its slot on entry.
	checkLines(t, unitLines(t, out, "queue/main_queue1"), []string{
		"scoreboard objectives add mcfq dummy",
		"scoreboard players set gate mcfq 1",
		"say after",
	})

	checkLines(t, unitLines(t, out, "queue/wait_main_1"), []string{
		"scoreboard objectives add mcfq dummy",
		"function test:queue/queue_main",
		"function test:queue/any_open",
		"execute if score __open mcfq matches 1 run schedule function test:queue/wait_main_1 1t",
		"execute unless score __open mcfq matches 1 run scoreboard players set gate mcfq 0",
		"execute unless score __open mcfq matches 1 run function test:queue/queue_main",
	})

	checkLines(t, unitLines(t, out, "queue/queue_main"), []string{
		"scoreboard objectives add mcfq dummy",
		"execute if score gate mcfq matches 0 run function test:queue/main_queue1",
	})

	checkLines(t, unitLines(t, out, "queue/any_open"), []string{
		"scoreboard objectives add mcfq dummy",
		"scoreboard players set __open mcfq 0",
		"execute if score gate mcfq matches 0 run scoreboard players set __open mcfq 1",
	})
}

func TestSuspensionDispatchOrder(t *testing.T) {
	out := compileT(t, `
func helper {
}
func main {
    call helper() [zeta]
    call helper() [alpha]
}
`)
	// Dispatch follows registration order, which is source order.
	checkLines(t, unitLines(t, out, "queue/queue_main"), []string{
		"scoreboard objectives add mcfq dummy",
		"execute if score zeta mcfq matches 0 run function test:queue/main_queue1",
		"execute if score alpha mcfq matches 0 run function test:queue/main_queue2",
	})

	// The aggregator walks slots in sorted order for stable output.
	checkLines(t, unitLines(t, out, "queue/any_open"), []string{
		"scoreboard objectives add mcfq dummy",
		"scoreboard players set __open mcfq 0",
		"execute if score alpha mcfq matches 0 run scoreboard players set __open mcfq 1",
		"execute if score zeta mcfq matches 0 run scoreboard players set __open mcfq 1",
	})
}

func TestSuspensionOnIfAndWhile(t *testing.T) {
	out := compileT(t, `
func main {
    if (o:a == 1) [cond] {
        run("say yes")
    }
    while (o:n) [loop] {
        o:n -= 1
    }
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		"scoreboard objectives add mcfq dummy",
		storReset,
		"execute if score a o matches 1..1 run function test:t/functions/ifs/if_main_1",
		"schedule function test:queue/wait_main_1 1t",
	})
	// The while statement moved into the first continuation.
	checkLines(t, unitLines(t, out, "queue/main_queue1"), []string{
		"scoreboard objectives add mcfq dummy",
		"scoreboard players set cond mcfq 1",
		"function test:t/functions/whiles/while_main_1",
		"schedule function test:queue/wait_main_2 1t",
	})
	if out.Lookup("queue/main_queue2") == nil {
		t.Error("second continuation not generated")
	}
}

func TestSuspensionInNestedBody(t *testing.T) {
	out := compileT(t, `
func helper {
}
func main {
    if (o:a == 1) {
        call helper() [inner]
    }
}
`)
	// The routine prologue adds the flag objective because a nested statement
	// suspends, even though the outer statements do not.
	lines := unitLines(t, out, "t/functions/main")
	if lines[0] != "scoreboard objectives add mcfq dummy" {
		t.Errorf("line 0 = %q, want flag objective prologue", lines[0])
	}
	checkLines(t, unitLines(t, out, "t/functions/ifs/if_main_1"), []string{
		"function test:t/functions/helper",
		"schedule function test:queue/wait_main_1 1t",
	})
}

func TestNoSchedulerWithoutSuspension(t *testing.T) {
	out := compileT(t, `
func main {
    run("say plain")
}
`)
	if out.Lookup("queue/queue_main") != nil {
		t.Error("dispatcher generated for a run with no suspension points")
	}
	if out.Lookup("queue/any_open") != nil {
		t.Error("aggregator generated for a run with no suspension points")
	}
}
