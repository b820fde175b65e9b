package compiler

import (
	"strings"
	"testing"
)

// compileT compiles one source as file t.mcfn in namespace test.
func compileT(t *testing.T, src string) *Output {
	t.Helper()
	out, err := CompileSource(src, "t.mcfn", "test", "")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return out
}

// unitLines returns the command lines of a generated unit.
func unitLines(t *testing.T, out *Output, path string) []string {
	t.Helper()
	u := out.Lookup(path)
	if u == nil {
		t.Fatalf("unit %s not generated", path)
	}
	return u.Lines
}

// checkLines compares generated lines against the expectation.
func checkLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("line count = %d, want %d\ngot:\n  %s", len(got), len(want), strings.Join(got, "\n  "))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

const storReset = "data modify storage mcfn_test:t return set value 0"

func TestLowerRangeComparisons(t *testing.T) {
	out := compileT(t, `
func main {
    if (o:a == 7) { run("say eq") }
    if (o:a <= 7) { run("say le") }
    if (o:a >= 7) { run("say ge") }
    if (o:a < 7) { run("say lt") }
    if (o:a > 7) { run("say gt") }
    if (o:a != 7) { run("say ne") }
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"execute if score a o matches 7..7 run function test:t/functions/ifs/if_main_1",
		"execute if score a o matches ..7 run function test:t/functions/ifs/if_main_2",
		"execute if score a o matches 7.. run function test:t/functions/ifs/if_main_3",
		"execute if score a o matches ..6 run function test:t/functions/ifs/if_main_4",
		"execute if score a o matches 8.. run function test:t/functions/ifs/if_main_5",
		"execute unless score a o matches 7..7 run function test:t/functions/ifs/if_main_6",
	})
	checkLines(t, unitLines(t, out, "t/functions/ifs/if_main_1"), []string{"say eq"})
}

func TestLowerBoundaryElision(t *testing.T) {
	out := compileT(t, `
func main {
    if (o:a < -2147483648) { run("say never") }
    if (o:a > 2147483647) { run("say never") }
}
`)
	// Both guards are unsatisfiable at the integer boundary, so the parent
	// emits nothing beyond its prologue.
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{storReset})
}

func TestLowerScoreScoreComparison(t *testing.T) {
	out := compileT(t, `
func main {
    if (o:a == o:b) { run("say eq") }
    if (o:a != o:b) { run("say ne") }
    if (o:a < o:b) { run("say lt") }
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"execute if score a o = b o run function test:t/functions/ifs/if_main_1",
		"execute unless score a o = b o run function test:t/functions/ifs/if_main_2",
		"execute if score a o < b o run function test:t/functions/ifs/if_main_3",
	})
}

func TestLowerDeclarations(t *testing.T) {
	out := compileT(t, `
func main {
    obj game, hp(health)
    var game:round, game:alive
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"scoreboard objectives add game dummy",
		"scoreboard objectives add hp health",
		"scoreboard players set round game 0",
		"scoreboard players set alive game 0",
	})
}

func TestLowerAssignScratch(t *testing.T) {
	out := compileT(t, `
func main {
    o:x = o:a + 5
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"scoreboard players operation x o = a o",
		"scoreboard players set __tmp o 5",
		"scoreboard players operation x o += __tmp o",
	})
}

func TestLowerNestedExpression(t *testing.T) {
	out := compileT(t, `
func main {
    o:x = o:a + 5 * o:b
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"scoreboard players operation x o = a o",
		"scoreboard players set __tmp o 5",
		"scoreboard players operation __tmp o *= b o",
		"scoreboard players operation x o += __tmp o",
	})
}

func TestLowerCompoundAssign(t *testing.T) {
	out := compileT(t, `
func main {
    o:x += 4
    o:x -= 2
    o:x *= 3
    o:x /= o:y
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"scoreboard players add x o 4",
		"scoreboard players remove x o 2",
		"scoreboard players set __tmp o 3",
		"scoreboard players operation x o *= __tmp o",
		"scoreboard players operation x o /= y o",
	})
}

func TestLowerWhile(t *testing.T) {
	out := compileT(t, `
func main {
    while (o:n) {
        o:n -= 1
    }
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"function test:t/functions/whiles/while_main_1",
	})
	checkLines(t, unitLines(t, out, "t/functions/whiles/while_main_1"), []string{
		"scoreboard players remove n o 1",
		"execute if score n o matches 1.. run function test:t/functions/whiles/while_main_1",
	})
}

func TestLowerRand(t *testing.T) {
	out := compileT(t, `
func main {
    rand(o:r)
    rand(o:r, 2, 8)
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"execute store result score r o run random value 0..100",
		"execute store result score r o run random value 2..8",
	})
}

func TestLowerShow(t *testing.T) {
	out := compileT(t, `
func main {
    show(v"HP [o:hp]")
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		`tellraw @a [{"text":"HP "},{"score":{"name":"hp","objective":"o"}}]`,
	})
}

func TestLowerTitle(t *testing.T) {
	out := compileT(t, `
func main {
    title("FIGHT")
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		`title @a title {"text":"FIGHT"}`,
	})
}

func TestLowerTitleRejectsNewline(t *testing.T) {
	_, err := CompileSource("func main {\n  title(\"a\\nb\")\n}\n", "t.mcfn", "test", "")
	if err == nil {
		t.Fatal("expected error for title text with a newline")
	}
	if !strings.Contains(err.Error(), "newline") {
		t.Errorf("error = %v, want newline complaint", err)
	}
}

func TestLowerRunPassthrough(t *testing.T) {
	out := compileT(t, `
func main {
    run("gamemode survival @a")
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"gamemode survival @a",
	})
}

func TestLowerRunInterpolated(t *testing.T) {
	out := compileT(t, `
func main {
    run(v"say Score [o:pts]")
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		`tellraw @a [{"text":"Score "},{"score":{"name":"pts","objective":"o"}}]`,
	})
}

func TestLowerRunSoleDefineString(t *testing.T) {
	out := compileT(t, `
#define CMD { "kill @e[tag=stale]" }

func main {
    run(v"$def(CMD)")
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"kill @e[tag=stale]",
	})
}

func TestLowerRunUndefinedDefine(t *testing.T) {
	_, err := CompileSource("func main {\n  run(v\"$def(NOPE)\")\n}\n", "t.mcfn", "test", "")
	if err == nil {
		t.Fatal("expected error for undefined define reference")
	}
}

func TestLowerStor(t *testing.T) {
	out := compileT(t, `
#define KIT {
  { sword: "iron" }
}

func main {
    stor round = 3, name = "bob", spawn = { pos: 1 }, kit = $def(KIT)
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"data modify storage mcfn_test:t round set value 3",
		`data modify storage mcfn_test:t name set value "bob"`,
		"data modify storage mcfn_test:t spawn set value {pos: 1}",
		`data modify storage mcfn_test:t kit set value { sword: "iron" }`,
	})
}

func TestLowerReturnForms(t *testing.T) {
	out := compileT(t, `
func a {
    return
}
func b {
    return 5
}
func c {
    return "done"
}
func d {
    return o:v
}
`)
	checkLines(t, unitLines(t, out, "t/functions/a"), []string{
		storReset,
		"data modify storage mcfn_test:t return set value 1",
		"data remove storage mcfn_test:t retval",
	})
	checkLines(t, unitLines(t, out, "t/functions/b"), []string{
		storReset,
		"data modify storage mcfn_test:t return set value 1",
		"data modify storage mcfn_test:t retval set value 5",
	})
	checkLines(t, unitLines(t, out, "t/functions/c"), []string{
		storReset,
		"data modify storage mcfn_test:t return set value 1",
		`data modify storage mcfn_test:t retval set value "done"`,
	})
	checkLines(t, unitLines(t, out, "t/functions/d"), []string{
		storReset,
		"data modify storage mcfn_test:t return set value 1",
		"execute store result storage mcfn_test:t retval int 1 run scoreboard players get v o",
	})
}

func TestLowerReturnComputed(t *testing.T) {
	out := compileT(t, `
func pick {
    return o:a + 1
}
`)
	checkLines(t, unitLines(t, out, "t/functions/pick"), []string{
		storReset,
		"data modify storage mcfn_test:t return set value 1",
		"scoreboard players operation __tmp o = a o",
		"scoreboard players set __tmp2 o 1",
		"scoreboard players operation __tmp o += __tmp2 o",
		"execute store result storage mcfn_test:t retval int 1 run scoreboard players get __tmp o",
	})
}

func TestLowerReturnAllLiteralComputed(t *testing.T) {
	_, err := CompileSource("func main {\n  return 1 + 2\n}\n", "t.mcfn", "test", "")
	if err == nil {
		t.Fatal("expected error for computed return with no register operand")
	}
}

func TestLowerCallAndVCall(t *testing.T) {
	out := compileT(t, `
func get {
    return 5
}
func main {
    call get()
    vcall o:x, get()
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"function test:t/functions/get",
		storReset,
		"function test:t/functions/get",
		"execute if data storage mcfn_test:t {return:1} run execute store result score x o run data get storage mcfn_test:t retval",
	})
}

func TestLowerExec(t *testing.T) {
	out := compileT(t, `
func main {
    exec @a {
        runs {
            say hi
        }
        data {
            merge entity @s {Glowing:1b}
        }
    }
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"execute as @a at @s run say hi",
		"execute as @a at @s run data merge entity @s {Glowing:1b}",
	})
}

func TestLowerRunsPassthrough(t *testing.T) {
	out := compileT(t, `
func main {
    runs {
        weather clear
        effect give @a minecraft:speed 10 1
    }
}
`)
	checkLines(t, unitLines(t, out, "t/functions/main"), []string{
		storReset,
		"weather clear",
		"effect give @a minecraft:speed 10 1",
	})
}

func TestLowerEntryPoints(t *testing.T) {
	out := compileT(t, `
func _ready {
}
func _tick {
}
`)
	if len(out.Load) != 1 || out.Load[0] != "test:t/functions/_ready" {
		t.Errorf("Load = %v, want [test:t/functions/_ready]", out.Load)
	}
	if len(out.Tick) != 1 || out.Tick[0] != "test:t/functions/_tick" {
		t.Errorf("Tick = %v, want [test:t/functions/_tick]", out.Tick)
	}
}

func TestLowerStringInArithmeticFault(t *testing.T) {
	_, err := CompileSource("func main {\n  o:x = \"nope\"\n}\n", "t.mcfn", "test", "")
	if err == nil {
		t.Fatal("expected error for string in a register assignment")
	}
}

func TestLowerConditionNeedsRegisterLHS(t *testing.T) {
	_, err := CompileSource("func main {\n  if (3 == o:a) {\n  }\n}\n", "t.mcfn", "test", "")
	if err == nil {
		t.Fatal("expected error for literal on the left of a condition")
	}
}
