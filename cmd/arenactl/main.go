// Command arenactl replays allocation traces against an arena.
package main

func main() {
	execute()
}
