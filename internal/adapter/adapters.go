package adapter

// Ops returns every built-in op bound to env.
func Ops(env *Env) []Op {
	return []Op{
		NewBaseOp("read_text", "Reads characters from a text file", env, ReadText),
		NewBaseOp("read_lines", "Reads every line of a text file", env, ReadLines),
		NewBaseOp("write_text", "Writes text to a file (mode w, a or x)", env, WriteText),
		NewBaseOp("list", "Lists the entries of a directory", env, List),
		NewBaseOp("mkdir", "Creates a directory", env, Mkdir),
		NewBaseOp("rename", "Moves a file or directory", env, Rename),
		NewBaseOp("remove", "Deletes a file", env, Remove),
		NewBaseOp("rmdir", "Deletes an empty directory", env, Rmdir),
		NewBaseOp("rmtree", "Deletes a directory tree", env, Rmtree),
		NewBaseOp("chdir", "Changes the working directory", env, Chdir),
		NewBaseOp("pwd", "Reports the working directory", env, Pwd),
	}
}
