// xqanalyze evaluates xiangqi positions with an NNUE network and caches
// the results in a local database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/hezhaoyun/xqengine/internal/board"
	"github.com/hezhaoyun/xqengine/internal/nnue"
	"github.com/hezhaoyun/xqengine/internal/store"
)

const startFEN = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1"

// Default network file name
const defaultNet = "xq-5b2f91c4.nnue"

var (
	fen        = flag.String("fen", startFEN, "position to analyze in FEN notation")
	netPath    = flag.String("net", "", "network file (default: search standard locations)")
	listMoves  = flag.Bool("moves", false, "print the legal moves")
	noCache    = flag.Bool("no-cache", false, "skip the analysis cache")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatalf("bad FEN: %v", err)
	}

	legal := pos.Generate(board.ModeLegal, board.NewMoveList())
	fmt.Printf("side to move: %v\n", pos.SideToMove())
	fmt.Printf("legal moves:  %d\n", legal.Len())
	if pos.InCheck() {
		fmt.Println("in check")
	}
	if *listMoves {
		fmt.Println(formatMoves(legal))
	}

	net, err := loadNetwork(*netPath)
	if err != nil {
		log.Printf("Warning: network not loaded: %v (using material count)", err)
		fmt.Printf("material:     %d\n", materialEval(pos))
		return
	}

	if *noCache {
		value, psqt := analyze(net, pos)
		printEval(value, psqt)
		return
	}

	db, err := store.Open()
	if err != nil {
		log.Fatalf("could not open analysis store: %v", err)
	}
	defer db.Close()

	key := pos.FEN()
	if cached, ok, err := db.Get(key, net.NetDescription); err != nil {
		log.Fatalf("cache lookup failed: %v", err)
	} else if ok {
		if err := db.RecordLookup(true); err != nil {
			log.Printf("Warning: could not update stats: %v", err)
		}
		fmt.Printf("cached at:    %s\n", cached.AnalyzedAt.Format("2006-01-02 15:04:05"))
		printEval(cached.Value, cached.PSQT)
		return
	}

	value, psqt := analyze(net, pos)
	printEval(value, psqt)

	err = db.Put(&store.Analysis{
		FEN:        key,
		Network:    net.NetDescription,
		Value:      value,
		PSQT:       psqt,
		LegalMoves: legal.Len(),
		InCheck:    pos.InCheck(),
	})
	if err != nil {
		log.Fatalf("could not store analysis: %v", err)
	}
	if err := db.RecordLookup(false); err != nil {
		log.Printf("Warning: could not update stats: %v", err)
	}
}

// materialEval is the no-network fallback: a plain piece count from the
// side to move's point of view.
func materialEval(pos *board.Position) int32 {
	values := [board.PieceTypeNB]int32{
		board.Rook:     900,
		board.Knight:   400,
		board.Cannon:   450,
		board.Elephant: 200,
		board.Advisor:  200,
		board.Pawn:     100,
	}

	var score int32
	for pt := board.Rook; pt <= board.King; pt++ {
		score += values[pt] * int32(pos.Pieces(board.Red, pt).Count())
		score -= values[pt] * int32(pos.Pieces(board.Black, pt).Count())
	}
	if pos.SideToMove() == board.Black {
		score = -score
	}
	return score
}

func analyze(net *nnue.Network, pos *board.Position) (value, psqt int32) {
	ev := nnue.NewEvaluator(net)
	ev.Reset(pos)
	return ev.Evaluate(pos)
}

func printEval(value, psqt int32) {
	fmt.Printf("evaluation:   %d\n", value)
	fmt.Printf("material:     %d\n", psqt)
	fmt.Printf("positional:   %d\n", value-psqt)
}

// loadNetwork loads the given file, or searches standard locations when
// no path is given.
func loadNetwork(path string) (*nnue.Network, error) {
	if path != "" {
		net := nnue.NewNetwork()
		if err := net.Load(path); err != nil {
			return nil, err
		}
		log.Printf("network loaded from %s", path)
		return net, nil
	}

	searchDirs := []string{}
	if dir, err := store.NetworkDir(); err == nil {
		searchDirs = append(searchDirs, dir)
	}
	searchDirs = append(searchDirs,
		filepath.Join(homeDir(), ".xqengine", "nnue"),
		"./nnue",
		".",
	)

	for _, dir := range searchDirs {
		p := filepath.Join(dir, defaultNet)
		if !fileExists(p) {
			continue
		}
		net := nnue.NewNetwork()
		if err := net.Load(p); err != nil {
			log.Printf("Failed to load network from %s: %v", p, err)
			continue
		}
		log.Printf("network loaded from %s", p)
		return net, nil
	}

	return nil, os.ErrNotExist
}

func formatMoves(ml *board.MoveList) string {
	moves := make([]string, ml.Len())
	for i := range moves {
		moves[i] = ml.Get(i).String()
	}
	sort.Strings(moves)
	return strings.Join(moves, " ")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
