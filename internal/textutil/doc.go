// Package textutil scores how closely two texts agree.
//
// SequenceRatio is a character-level Ratcliff/Obershelp match ratio and is
// the headline accuracy score. WordCosine compares bags of words and
// ignores ordering and punctuation.
package textutil
