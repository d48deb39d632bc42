package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/park285/Cheese-Coach-bot/internal/chessbuilder"
	corechess "github.com/park285/Cheese-Coach-bot/internal/chess"
	appcfg "github.com/park285/Cheese-Coach-bot/internal/config"
)

func main() {
	fen := flag.String("fen", "", "position to ask about (default: start position)")
	level := flag.Int("level", 5, "skill level 1-10")
	flag.Parse()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gen, err := chessbuilder.NewGenerator(cfg)
	if err != nil {
		log.Fatalf("generator error: %v", err)
	}

	board := corechess.NewBoard()
	if *fen != "" {
		if board, err = corechess.NewBoardFromFEN(*fen); err != nil {
			log.Fatalf("fen error: %v", err)
		}
	}

	engine := corechess.NewEngine(gen, corechess.WithGenerateTimeout(cfg.LLMTimeout))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout+5*time.Second)
	defer cancel()

	dec, err := engine.ChooseMove(ctx, board, board.LegalMoves(), *level)
	if err != nil {
		log.Fatalf("choose move: %v", err)
	}
	log.Printf("provider=%s level=%d move=%s san=%s path=%s failure=%q took=%s",
		cfg.LLMProvider, *level, dec.Move, board.SAN(dec.Move), dec.Path, dec.Failure, dec.Duration)
	if dec.Response != "" {
		log.Printf("raw response: %q", dec.Response)
	}
}
