// zbackup drives tiered, property-declared ZFS backups: snapshot policy
// and replication targets live as user properties on the filesystems
// themselves, and each run resolves them into snapshot, reap, and
// replication actions.
package main

func main() {
	Execute()
}
